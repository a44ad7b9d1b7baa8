package engine

import (
	"context"
	"fmt"

	"github.com/TyrionQu/FactorMethods/internal/bitset"
	"github.com/TyrionQu/FactorMethods/internal/matrix"
	"github.com/TyrionQu/FactorMethods/internal/mst"
)

// scratch is the per-worker state of the executor.
type scratch struct {
	costs mst.Costs
	tree  mst.Tree
}

type applyStats struct {
	merges int
	early  int
	late   int
	fillIn int64
}

func (s *applyStats) add(o applyStats) {
	s.merges += o.merges
	s.early += o.early
	s.late += o.late
	s.fillIn += o.fillIn
}

// applyMerges runs the candidates of L concurrently. A candidate runs only
// if its worker claims every one of its rows; rows stay claimed until the
// end of the pass.
func (e *Engine[E]) applyMerges(ctx context.Context, tr *matrix.Transpose, L []uint32) (applyStats, error) {
	m := e.m
	pool := m.Pool()
	busy := bitset.New(uint64(m.Rows())) //nolint:gosec // rows < 2^32
	per := make([]applyStats, pool.Workers())

	err := pool.Guided(ctx, 0, len(L), 1, func(t, it int) error {
		c := int(L[it])
		rows := tr.Bucket(c)
		st := &per[t]

		for _, i := range rows {
			if busy.Test(uint64(i)) {
				st.early++
				return nil
			}
		}
		// another worker may have claimed a row since the check
		for _, i := range rows {
			if !busy.TryClaim(uint64(i)) {
				st.late++
				return nil
			}
		}

		fill, err := e.mergeDo(t, tr, c)
		if err != nil {
			return err
		}
		st.fillIn += fill
		st.merges++
		return nil
	})
	if err != nil {
		return applyStats{}, err
	}

	var total applyStats
	for _, st := range per {
		total.add(st)
	}
	m.Account(total.merges, total.fillIn)
	return total, nil
}

// mergeDo eliminates the column of bucket c and returns the fill-in. The
// caller owns every row of the bucket.
func (e *Engine[E]) mergeDo(t int, tr *matrix.Transpose, c int) (int64, error) {
	m := e.m
	w := m.Arena().Worker(t)
	j := tr.Column(c)
	col := m.OriginalColumn(j)
	ind := tr.Bucket(c)

	if len(ind) == 1 {
		i := ind[0]
		n := m.Len(i)
		e.rec.Remove(t, i, col)
		m.RemoveRow(w, i)
		return -int64(n), nil
	}
	if len(ind) > mst.MaxVertices {
		return 0, fmt.Errorf("%w: column %d has %d rows", ErrWidthExceeded, j, len(ind))
	}

	s := &e.scratch[t]
	if err := s.costs.Reset(len(ind)); err != nil {
		return 0, err
	}
	for a := range ind {
		for b := a + 1; b < len(ind); b++ {
			s.costs.Set(a, b, int32(m.CombinedWeight(ind[a], ind[b], j))) //nolint:gosec // bounded by row lengths
		}
	}
	if err := mst.MinimumSpanningTree(&s.costs, &s.tree); err != nil {
		return 0, err
	}

	// the tree weight is the total length of the rows that survive
	fill := int64(s.tree.Weight)
	for _, i := range ind {
		fill -= int64(m.Len(i))
	}

	// Latest edges first: a father is only ever a son of an earlier edge,
	// so it still holds its original row when added.
	tree := &s.tree
	for k := tree.Edges - 1; k >= 0; k-- {
		father, son := ind[tree.Father[k]], ind[tree.Son[k]]
		if err := m.AddRow(w, son, father, j); err != nil {
			return 0, fmt.Errorf("engine: merging column %d: %w", j, err)
		}
		from := -(int64(father) + 1)
		if k == 0 {
			from = int64(father)
		}
		e.rec.Add(t, from, son, col)
	}
	m.RemoveRow(w, ind[0])
	return fill, nil
}
