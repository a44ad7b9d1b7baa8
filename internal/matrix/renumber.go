package matrix

import (
	"context"

	"github.com/TyrionQu/FactorMethods/internal/parallel"
)

// Renumber drops empty columns and relabels the others in increasing order.
// The live column count is recounted from the weights, and jmin and the
// input column map follow the relabeling. It returns the new column range.
func (m *Matrix[E]) Renumber(ctx context.Context) (int, error) {
	ncols := m.ncols
	counts := make([]uint32, m.pool.Workers())

	err := m.pool.Static(ctx, 0, ncols, func(t, lo, hi int) error {
		var n uint32
		for j := lo; j < hi; j++ {
			if m.wt.Get(uint32(j)) > 0 { //nolint:gosec // j < ncols
				n++
			}
		}
		counts[t] = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	live := parallel.ExclusiveScan(counts)

	p := make([]uint32, ncols)
	err = m.pool.Static(ctx, 0, ncols, func(t, lo, hi int) error {
		n := counts[t]
		for j := lo; j < hi; j++ {
			p[j] = n
			if m.wt.Get(uint32(j)) > 0 { //nolint:gosec // j < ncols
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	err = m.pool.Guided(ctx, 0, m.nrows, 64, func(_, i int) error {
		row := m.Row(uint32(i)) //nolint:gosec // i < nrows
		for k, e := range row {
			row[k] = e.WithColumn(p[e.Column()])
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	nwt := NewWeights(int(live))
	var orig []uint32
	if m.exps {
		orig = make([]uint32, live)
	}
	err = m.pool.Static(ctx, 0, ncols, func(_, lo, hi int) error {
		for j := lo; j < hi; j++ {
			w := m.wt.Get(uint32(j)) //nolint:gosec // j < ncols
			if w == 0 {
				continue
			}
			nwt.Set(p[j], w)
			if orig != nil {
				orig[p[j]] = m.OriginalColumn(uint32(j)) //nolint:gosec // j < ncols
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if m.jminReady {
		for w := 1; w <= m.maxWeight; w++ {
			if int(m.jmin[w]) < ncols {
				m.jmin[w] = p[m.jmin[w]]
			} else {
				m.jmin[w] = live
			}
		}
	}

	m.wt = nwt
	m.orig = orig
	m.ncols = int(live)
	m.remNcols = int64(live)
	return m.ncols, nil
}
