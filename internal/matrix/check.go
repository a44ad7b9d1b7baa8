package matrix

import (
	"fmt"
)

// Check recounts the matrix from its rows and compares the result with the
// bookkeeping: live rows, total weight, row order and every unsaturated
// column weight. Weights are only checked once ComputeWeights has run.
// Check must not run concurrently with merges.
func (m *Matrix[E]) Check() error {
	counts := make([]int, m.ncols)
	var live, weight int64

	for i := range m.rows {
		if !m.Live(uint32(i)) { //nolint:gosec // i < nrows
			continue
		}
		row := m.Row(uint32(i)) //nolint:gosec // i < nrows
		if id := m.arena.ID(m.rows[i]); id != uint32(i) { //nolint:gosec // i < nrows
			return fmt.Errorf("%w: slot %d holds row %d", ErrInconsistentRow, i, id)
		}
		for k, e := range row {
			j := e.Column()
			if int(j) >= m.ncols {
				return fmt.Errorf("%w: column %d in row %d", ErrColumnOutOfRange, j, i)
			}
			if k > 0 && row[k-1].Column() >= j {
				return fmt.Errorf("%w: row %d is not strictly ascending at %d", ErrInconsistentRow, i, k)
			}
			if x, ok := any(e).(Exp); ok && x.E == 0 {
				return fmt.Errorf("%w: row %d column %d", ErrZeroExponent, i, j)
			}
			counts[j]++
		}
		live++
		weight += int64(len(row))
	}

	if live != m.remNrows {
		return fmt.Errorf("%w: %d live rows, %d recorded", ErrInconsistentRow, live, m.remNrows)
	}
	if weight != m.totWeight {
		return fmt.Errorf("%w: total weight %d, %d recorded", ErrInconsistentRow, weight, m.totWeight)
	}

	if !m.jminReady {
		return nil
	}
	for j, c := range counts {
		w := int(m.wt.Get(uint32(j))) //nolint:gosec // j < ncols
		if w <= m.maxWeight && w != c {
			return fmt.Errorf("%w: column %d has weight %d, %d rows", ErrInconsistentRow, j, w, c)
		}
	}
	return nil
}
