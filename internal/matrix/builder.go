package matrix

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/TyrionQu/FactorMethods/internal/arena"
)

// Builder fills a matrix with input relations, one row at a time.
// It is not safe for concurrent use.
type Builder[E Element[E]] struct {
	m     *Matrix[E]
	w     *arena.Worker
	buf   []E
	added int
}

// NewBuilder returns a builder writing rows through worker 0 of the arena.
func NewBuilder[E Element[E]](m *Matrix[E]) *Builder[E] {
	return &Builder[E]{m: m, w: m.arena.Worker(0)}
}

// Add stores relation i. Every entry counts toward the weight of its column;
// entries on buried columns are not stored. Entries are sorted by column.
// For Plain rows a column must not repeat.
func (b *Builder[E]) Add(i uint32, entries []E) error {
	m := b.m
	if int(i) >= m.nrows {
		return fmt.Errorf("%w: row %d of %d", ErrRowOutOfRange, i, m.nrows)
	}
	if m.rows[i] != arena.Nil {
		return fmt.Errorf("%w: row %d added twice", ErrInconsistentRow, i)
	}

	b.buf = b.buf[:0]
	for _, e := range entries {
		h := e.Column()
		if int(h) >= m.ncols {
			return fmt.Errorf("%w: column %d in row %d", ErrColumnOutOfRange, h, i)
		}
		if m.wt.saturatingInc(h) {
			m.remNcols++
		}
		if h < m.skip {
			continue
		}
		b.buf = append(b.buf, e)
	}

	slices.SortFunc(b.buf, func(x, y E) int {
		return cmp.Compare(x.Column(), y.Column())
	})

	ref, words, err := b.w.Alloc(i, len(b.buf))
	if err != nil {
		return err
	}
	copy(view[E](words), b.buf)

	m.rows[i] = ref
	m.totWeight += int64(len(b.buf))
	m.remNrows++
	b.added++
	return nil
}

// Finish checks that every row slot was filled.
func (b *Builder[E]) Finish() error {
	if b.added != b.m.nrows {
		return fmt.Errorf("%w: read %d rows, expected %d", ErrInvalidDimensions, b.added, b.m.nrows)
	}
	return nil
}
