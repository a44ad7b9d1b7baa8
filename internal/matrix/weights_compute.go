package matrix

import (
	"context"
)

// ComputeWeights recounts column weights from the stored rows.
//
// The first call counts every column, saturating at MaxWeight+1, and
// records jmin. Later calls only recount columns from JMin(cwmax) on,
// saturating at cwmax+1, since lighter columns cannot reappear below it.
func (m *Matrix[E]) ComputeWeights(ctx context.Context, cwmax int) error {
	var j0 uint32
	if m.jminReady {
		j0 = m.jmin[cwmax]
	} else {
		cwmax = m.maxWeight
	}
	ceil := uint8(cwmax) //nolint:gosec // <= MaxMergeWidth
	span := m.ncols - int(j0)

	local := make([][]uint8, m.pool.Workers())
	err := m.pool.Guided(ctx, 0, m.nrows, 64, func(t, i int) error {
		buf := local[t]
		if buf == nil {
			buf = make([]uint8, span)
			local[t] = buf
		}
		row := m.Row(uint32(i)) //nolint:gosec // i < nrows
		for l := len(row) - 1; l >= 0; l-- {
			j := row[l].Column()
			if j < j0 {
				break
			}
			if buf[j-j0] <= ceil {
				buf[j-j0]++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = m.pool.Static(ctx, int(j0)/4, (m.ncols+3)/4, func(_, lo, hi int) error {
		for wi := lo; wi < hi; wi++ {
			word := m.wt.loadWord(wi)
			for b := range 4 {
				j := wi*4 + b
				if j < int(j0) || j >= m.ncols {
					continue
				}
				var val uint8
				for _, buf := range local {
					if buf == nil {
						continue
					}
					if v := buf[j-int(j0)]; int(val)+int(v) <= cwmax {
						val += v
					} else {
						val = ceil + 1
						break
					}
				}
				shift := uint(b) * 8
				word = word&^(0xff<<shift) | uint32(val)<<shift
			}
			m.wt.storeWord(wi, word)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !m.jminReady {
		return m.computeJMin(ctx)
	}
	return nil
}

// computeJMin sets jmin[w] to the smallest column of weight w, then to the
// smallest column of weight at most w.
func (m *Matrix[E]) computeJMin(ctx context.Context) error {
	ncols := uint32(m.ncols) //nolint:gosec // checked in New
	local := make([][]uint32, m.pool.Workers())

	err := m.pool.Static(ctx, 0, m.ncols, func(t, lo, hi int) error {
		mins := make([]uint32, m.maxWeight+1)
		for w := range mins {
			mins[w] = ncols
		}
		for j := lo; j < hi; j++ {
			w := int(m.wt.Get(uint32(j))) //nolint:gosec // j < ncols
			if w > 0 && w <= m.maxWeight && uint32(j) < mins[w] {
				mins[w] = uint32(j)
			}
		}
		local[t] = mins
		return nil
	})
	if err != nil {
		return err
	}

	for w := 1; w <= m.maxWeight; w++ {
		m.jmin[w] = ncols
		for _, mins := range local {
			if mins != nil && mins[w] < m.jmin[w] {
				m.jmin[w] = mins[w]
			}
		}
	}
	for w := 2; w <= m.maxWeight; w++ {
		m.jmin[w] = min(m.jmin[w], m.jmin[w-1])
	}
	m.jmin[0] = 0
	m.jminReady = true
	return nil
}
