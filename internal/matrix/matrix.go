package matrix

import (
	"context"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/TyrionQu/FactorMethods/internal/arena"
	"github.com/TyrionQu/FactorMethods/internal/parallel"
)

const (
	// MaxMergeWidth is the widest column a single merge can eliminate.
	MaxMergeWidth = 32
	// DefaultSkip is the default number of buried columns.
	DefaultSkip = 32
	// saturated is the ingestion ceiling of a column counter.
	saturated = math.MaxUint8
)

// Config describes the shape of a matrix.
type Config struct {
	Rows int
	Cols int
	// Skip buries columns [0, Skip): they are counted but never stored.
	Skip uint32
	// MaxWeight is the widest column ever merged. Weights saturate at
	// MaxWeight+1. Zero means MaxMergeWidth.
	MaxWeight int
}

// Matrix is a sparse matrix whose rows live in an arena.
//
// Rows may be read concurrently. A row is only mutated by the worker that
// owns it for the current merge. Counters such as RemainingRows are updated
// between parallel regions.
type Matrix[E Element[E]] struct {
	arena *arena.Arena
	pool  *parallel.Pool
	ops   rowOps[E]
	exps  bool

	rows      []arena.Ref
	nrows     int
	ncols     int
	skip      uint32
	maxWeight int

	wt        *Weights
	jmin      []uint32
	jminReady bool
	orig      []uint32 // current column -> input column, exponent rows only

	remNrows  int64
	remNcols  int64
	totWeight int64

	// transpose buffers sized by the column range at creation
	rp, rq, rqinv []uint32
}

// New creates an empty matrix backed by a. The arena element width must
// match E.
func New[E Element[E]](a *arena.Arena, pool *parallel.Pool, cfg Config) (*Matrix[E], error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 || cfg.Rows >= int(arena.DeadRow) || cfg.Cols > math.MaxUint32-1 {
		return nil, fmt.Errorf("%w: %d rows, %d columns", ErrInvalidDimensions, cfg.Rows, cfg.Cols)
	}
	if a.ElemWords() != ElemWords[E]() {
		return nil, fmt.Errorf("matrix: arena element width %d, want %d", a.ElemWords(), ElemWords[E]())
	}
	if pool.Workers() > a.Workers() {
		return nil, fmt.Errorf("matrix: pool has %d workers, arena %d", pool.Workers(), a.Workers())
	}

	maxWeight := cfg.MaxWeight
	if maxWeight <= 0 || maxWeight > MaxMergeWidth {
		maxWeight = MaxMergeWidth
	}

	var zero E
	_, exps := any(zero).(Exp)

	return &Matrix[E]{
		arena:     a,
		pool:      pool,
		ops:       opsFor[E](),
		exps:      exps,
		rows:      make([]arena.Ref, cfg.Rows),
		nrows:     cfg.Rows,
		ncols:     cfg.Cols,
		skip:      cfg.Skip,
		maxWeight: maxWeight,
		wt:        NewWeights(cfg.Cols),
		jmin:      make([]uint32, maxWeight+1),
	}, nil
}

// Rows returns the number of row slots.
func (m *Matrix[E]) Rows() int { return m.nrows }

// Cols returns the current column range.
func (m *Matrix[E]) Cols() int { return m.ncols }

// RemainingRows returns the number of live rows.
func (m *Matrix[E]) RemainingRows() int64 { return m.remNrows }

// RemainingCols returns the number of columns believed to be non-empty.
func (m *Matrix[E]) RemainingCols() int64 { return m.remNcols }

// TotalWeight returns the number of stored coefficients.
func (m *Matrix[E]) TotalWeight() int64 { return m.totWeight }

// MaxWeight returns the widest column ever merged.
func (m *Matrix[E]) MaxWeight() int { return m.maxWeight }

// Exponents reports whether rows carry exponents.
func (m *Matrix[E]) Exponents() bool {
	return m.exps
}

// Density returns the average number of coefficients per live row.
func (m *Matrix[E]) Density() float64 {
	if m.remNrows == 0 {
		return 0
	}
	return float64(m.totWeight) / float64(m.remNrows)
}

// Pool returns the fork-join pool of the matrix.
func (m *Matrix[E]) Pool() *parallel.Pool { return m.pool }

// Arena returns the row storage.
func (m *Matrix[E]) Arena() *arena.Arena { return m.arena }

// Weights returns the column counters.
func (m *Matrix[E]) Weights() *Weights { return m.wt }

// Weight returns the saturated weight of column j.
func (m *Matrix[E]) Weight(j uint32) uint8 { return m.wt.Get(j) }

// JMin returns the smallest column whose weight was at most w when weights
// were first computed, or Cols if there is none.
func (m *Matrix[E]) JMin(w int) uint32 {
	if !m.jminReady {
		return 0
	}
	return m.jmin[w]
}

// OriginalColumn returns the input index of column j.
func (m *Matrix[E]) OriginalColumn(j uint32) uint32 {
	if m.orig == nil {
		return j
	}
	return m.orig[j]
}

// Live reports whether row i holds a row.
func (m *Matrix[E]) Live(i uint32) bool {
	return m.rows[i] != arena.Nil
}

// Row returns the elements of row i, or nil for an absent row.
// The slice aliases arena memory and is invalidated by the next collection.
func (m *Matrix[E]) Row(i uint32) []E {
	ref := m.rows[i]
	if ref == arena.Nil {
		return nil
	}
	return view[E](m.arena.Payload(ref))
}

// Len returns the number of coefficients of row i.
func (m *Matrix[E]) Len(i uint32) int {
	ref := m.rows[i]
	if ref == arena.Nil {
		return 0
	}
	return m.arena.Len(ref)
}

// RemoveRow deletes row i and releases its columns.
func (m *Matrix[E]) RemoveRow(w *arena.Worker, i uint32) {
	limit := uint8(m.maxWeight) //nolint:gosec // <= MaxMergeWidth
	for _, e := range m.Row(i) {
		m.wt.DecrementBelow(e.Column(), limit)
	}
	w.Destroy(m.rows[i])
	m.rows[i] = arena.Nil
}

// AddRow adds row i2 to row i1 so that column j cancels. Row i1 is
// replaced by a new row allocated from w.
func (m *Matrix[E]) AddRow(w *arena.Worker, i1, i2, j uint32) error {
	return m.ops.addRow(m, w, i1, i2, j)
}

// CombinedWeight returns the length of row i1 + row i2 combined on column j.
func (m *Matrix[E]) CombinedWeight(i1, i2, j uint32) int {
	return m.ops.weightSum(m, i1, i2, j)
}

// Account records the outcome of a merge pass: each merge removes one row
// and one column, and changes the total weight by its fill-in.
func (m *Matrix[E]) Account(merges int, fillIn int64) {
	m.totWeight += fillIn
	m.remNrows -= int64(merges)
	m.remNcols -= int64(merges)
}

// LiveRows returns the indices of live rows.
func (m *Matrix[E]) LiveRows() *roaring.Bitmap {
	bm := roaring.New()
	for i, ref := range m.rows {
		if ref != arena.Nil {
			bm.Add(uint32(i)) //nolint:gosec // rows < DeadRow
		}
	}
	return bm
}

// CollectGarbage compacts arena pages from earlier passes and repoints the
// moved rows.
func (m *Matrix[E]) CollectGarbage(ctx context.Context) (arena.GCStats, error) {
	return m.arena.CollectGarbage(ctx, m.pool, m.relocate)
}

func (m *Matrix[E]) relocate(id uint32, from, to arena.Ref) error {
	if int(id) >= m.nrows || m.rows[id] != from {
		return fmt.Errorf("%w: row %d moved from an unowned block", ErrInconsistentRow, id)
	}
	m.rows[id] = to
	return nil
}
