package matrix

import (
	"fmt"

	"github.com/TyrionQu/FactorMethods/internal/arena"
	"github.com/TyrionQu/FactorMethods/internal/conv"
)

type rowOps[E Element[E]] interface {
	addRow(m *Matrix[E], w *arena.Worker, i1, i2, j uint32) error
	weightSum(m *Matrix[E], i1, i2, j uint32) int
}

func opsFor[E Element[E]]() rowOps[E] {
	var zero E
	if _, ok := any(zero).(Plain); ok {
		return any(plainOps{}).(rowOps[E])
	}
	return any(expOps{}).(rowOps[E])
}

// replace installs the freshly written row of n elements as row i.
func replace[E Element[E]](m *Matrix[E], w *arena.Worker, i uint32, ref arena.Ref, n int) error {
	if err := w.Shrink(ref, n); err != nil {
		return err
	}
	w.Destroy(m.rows[i])
	m.rows[i] = ref
	return nil
}

type plainOps struct{}

// addRow computes the symmetric difference of two ascending rows.
func (plainOps) addRow(m *Matrix[Plain], w *arena.Worker, i1, i2, _ uint32) error {
	r1, r2 := m.Row(i1), m.Row(i2)
	k1, k2 := len(r1), len(r2)
	limit := uint8(m.maxWeight) //nolint:gosec // <= MaxMergeWidth

	ref, words, err := w.Alloc(i1, k1+k2)
	if err != nil {
		return err
	}
	sum := view[Plain](words)

	t, t1, t2 := 0, 0, 0
	for t1 < k1 && t2 < k2 {
		switch c1, c2 := r1[t1], r2[t2]; {
		case c1 == c2:
			m.wt.DecrementBelow(uint32(c1), limit)
			t1++
			t2++
		case c1 < c2:
			sum[t] = c1
			t++
			t1++
		default:
			m.wt.IncrementBelow(uint32(c2), limit)
			sum[t] = c2
			t++
			t2++
		}
	}
	for ; t1 < k1; t1++ {
		sum[t] = r1[t1]
		t++
	}
	for ; t2 < k2; t2++ {
		m.wt.IncrementBelow(uint32(r2[t2]), limit)
		sum[t] = r2[t2]
		t++
	}

	return replace(m, w, i1, ref, t)
}

func (plainOps) weightSum(m *Matrix[Plain], i1, i2, _ uint32) int {
	r1, r2 := m.Row(i1), m.Row(i2)
	common := 0
	for t1, t2 := 0, 0; t1 < len(r1) && t2 < len(r2); {
		switch {
		case r1[t1] == r2[t2]:
			common++
			t1++
			t2++
		case r1[t1] < r2[t2]:
			t1++
		default:
			t2++
		}
	}
	return len(r1) + len(r2) - 2*common
}

type expOps struct{}

// exponentOn returns the exponent of column j in row r, searching from the
// end since merged columns tend to be large.
func exponentOn(r []Exp, j uint32) int32 {
	for l := len(r) - 1; l >= 0; l-- {
		if r[l].Col == j {
			return r[l].E
		}
	}
	return 0
}

// cofactors returns (c1, c2) such that c1*e1 + c2*e2 == 0 is the
// cancellation on the merged column: row i1 is scaled by c1 and row i2 by c2.
func cofactors(r1, r2 []Exp, i1, i2, j uint32) (int64, int64, error) {
	e1 := int64(exponentOn(r1, j))
	e2 := int64(exponentOn(r2, j))
	if e1 == 0 || e2 == 0 {
		return 0, 0, fmt.Errorf("%w: rows %d and %d on column %d", ErrZeroExponent, i1, i2, j)
	}
	d := gcd(e1, e2)
	return e2 / d, -e1 / d, nil
}

func checked(e int64, i uint32, j uint32) (int32, error) {
	v, err := conv.Int64ToInt32(e)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %d: %w", ErrExponentOverflow, i, j, err)
	}
	return v, nil
}

// addRow replaces row i1 by c1*row(i1) + c2*row(i2), which has no entry on
// column j.
func (expOps) addRow(m *Matrix[Exp], w *arena.Worker, i1, i2, j uint32) error {
	r1, r2 := m.Row(i1), m.Row(i2)
	k1, k2 := len(r1), len(r2)
	limit := uint8(m.maxWeight) //nolint:gosec // <= MaxMergeWidth

	c1, c2, err := cofactors(r1, r2, i1, i2, j)
	if err != nil {
		return err
	}

	ref, words, err := w.Alloc(i1, k1+k2-1)
	if err != nil {
		return err
	}
	sum := view[Exp](words)

	t, t1, t2 := 0, 0, 0
	emit := func(col uint32, e int64) error {
		v, err := checked(e, i1, col)
		if err != nil {
			return err
		}
		sum[t] = Exp{Col: col, E: v}
		t++
		return nil
	}

	for t1 < k1 && t2 < k2 {
		a, b := r1[t1], r2[t2]
		switch {
		case a.Col == b.Col:
			if e := c1*int64(a.E) + c2*int64(b.E); e != 0 {
				if err := emit(a.Col, e); err != nil {
					return err
				}
			} else {
				m.wt.DecrementBelow(a.Col, limit)
			}
			t1++
			t2++
		case a.Col < b.Col:
			if err := emit(a.Col, c1*int64(a.E)); err != nil {
				return err
			}
			t1++
		default:
			if err := emit(b.Col, c2*int64(b.E)); err != nil {
				return err
			}
			m.wt.IncrementBelow(b.Col, limit)
			t2++
		}
	}
	for ; t1 < k1; t1++ {
		if err := emit(r1[t1].Col, c1*int64(r1[t1].E)); err != nil {
			return err
		}
	}
	for ; t2 < k2; t2++ {
		if err := emit(r2[t2].Col, c2*int64(r2[t2].E)); err != nil {
			return err
		}
		m.wt.IncrementBelow(r2[t2].Col, limit)
	}

	return replace(m, w, i1, ref, t)
}

func (expOps) weightSum(m *Matrix[Exp], i1, i2, j uint32) int {
	r1, r2 := m.Row(i1), m.Row(i2)
	c1, c2, err := cofactors(r1, r2, i1, i2, j)
	if err != nil {
		// the merge itself reports the error
		return len(r1) + len(r2)
	}

	common, cancelled := 0, 0
	for t1, t2 := 0, 0; t1 < len(r1) && t2 < len(r2); {
		a, b := r1[t1], r2[t2]
		switch {
		case a.Col == b.Col:
			common++
			if c1*int64(a.E)+c2*int64(b.E) == 0 {
				cancelled++
			}
			t1++
			t2++
		case a.Col < b.Col:
			t1++
		default:
			t2++
		}
	}
	return len(r1) + len(r2) - common - cancelled
}
