package matrix

import (
	"context"
	"sync/atomic"

	"github.com/TyrionQu/FactorMethods/internal/parallel"
)

// Transpose is the column-to-rows index of the light columns, in CSR form.
// Bucket c lists the rows of column Rqinv[c].
type Transpose struct {
	Rp    []uint32 // Rp[c]:Rp[c+1] spans bucket c in Ri
	Ri    []uint32
	Rq    []uint32 // column -> bucket, for indexed columns only
	Rqinv []uint32 // bucket -> column
	Rn    int
}

// Width returns the number of rows in bucket c.
func (tr *Transpose) Width(c int) int {
	return int(tr.Rp[c+1] - tr.Rp[c])
}

// Bucket returns the rows of bucket c.
func (tr *Transpose) Bucket(c int) []uint32 {
	return tr.Ri[tr.Rp[c]:tr.Rp[c+1]]
}

// Column returns the column of bucket c.
func (tr *Transpose) Column(c int) uint32 {
	return tr.Rqinv[c]
}

// Nnz returns the number of indexed entries.
func (tr *Transpose) Nnz() int {
	return len(tr.Ri)
}

// BuildTranspose indexes every column j >= j0 with weight in [1, cwmax].
// The returned index shares buffers with the matrix and is valid until the
// next call.
func (m *Matrix[E]) BuildTranspose(ctx context.Context, j0 uint32, cwmax int) (*Transpose, error) {
	if m.rp == nil {
		m.rp = make([]uint32, m.ncols+1)
		m.rq = make([]uint32, m.ncols)
		m.rqinv = make([]uint32, m.ncols)
	}
	rp, rq, rqinv := m.rp, m.rq, m.rqinv
	ceil := uint8(cwmax) //nolint:gosec // <= MaxMergeWidth
	lo, hi := int(j0), m.ncols

	workers := m.pool.Workers()
	tnz := make([]uint32, workers)
	tn := make([]uint32, workers)

	err := m.pool.Static(ctx, lo, hi, func(t, s, e int) error {
		var nz, n uint32
		for j := s; j < e; j++ {
			if w := m.wt.Get(uint32(j)); w > 0 && w <= ceil { //nolint:gosec // j < ncols
				nz += uint32(w)
				n++
			}
		}
		tnz[t], tn[t] = nz, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	nnz := parallel.ExclusiveScan(tnz)
	rn := parallel.ExclusiveScan(tn)
	rp[rn] = nnz

	// bucket pointers start at the end of each bucket; the scatter below
	// moves them down to the start
	err = m.pool.Static(ctx, lo, hi, func(t, s, e int) error {
		nz, n := tnz[t], tn[t]
		for j := s; j < e; j++ {
			if w := m.wt.Get(uint32(j)); w > 0 && w <= ceil { //nolint:gosec // j < ncols
				rq[j] = n
				rqinv[n] = uint32(j) //nolint:gosec // j < ncols
				nz += uint32(w)
				rp[n] = nz
				n++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ri := make([]uint32, nnz)
	err = m.pool.Guided(ctx, 0, m.nrows, 64, func(_, i int) error {
		row := m.Row(uint32(i)) //nolint:gosec // i < nrows
		for l := len(row) - 1; l >= 0; l-- {
			j := row[l].Column()
			if j < j0 {
				break
			}
			if m.wt.Get(j) > ceil {
				continue
			}
			ptr := atomic.AddUint32(&rp[rq[j]], ^uint32(0))
			ri[ptr] = uint32(i) //nolint:gosec // i < nrows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Transpose{
		Rp:    rp[:rn+1],
		Ri:    ri,
		Rq:    rq,
		Rqinv: rqinv[:rn],
		Rn:    int(rn),
	}, nil
}
