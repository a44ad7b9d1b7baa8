package engine

import (
	"context"
	"math"

	"github.com/TyrionQu/FactorMethods/internal/matrix"
	"github.com/TyrionQu/FactorMethods/internal/parallel"
)

const (
	// bias lifts the cheapest merge of width >= 2 to cost 1 so that every
	// width-1 merge (cost 0) sorts before it.
	bias = 3
	// infeasible is the cost of a column wider than the weight ceiling.
	infeasible = math.MaxInt32
)

// mergeCost estimates the fill-in of eliminating the column of bucket c by
// combining its rows with the shortest one.
func mergeCost[E matrix.Element[E]](m *matrix.Matrix[E], tr *matrix.Transpose, c, cwmax int) int32 {
	rows := tr.Bucket(c)
	w := len(rows)
	if w == 1 {
		return 0
	}
	if w > cwmax {
		return infeasible
	}

	cmin := m.Len(rows[0])
	for _, i := range rows[1:] {
		cmin = min(cmin, m.Len(i))
	}
	// rows reduced to the merged column alone would go below 1
	return int32(max((w-1)*(cmin-2)-cmin+bias, 1)) //nolint:gosec // w, cmin bounded by row lengths
}

// selectMerges returns the buckets of tr whose cost is at most cbound, in
// nondecreasing cost order.
//
// Costs are small integers, so the order comes from a parallel bucket sort:
// each worker counts its costs, a prefix sum over (cost, worker) turns the
// counts into write positions, and each worker scatters its own range.
// Both scans must see the same ranges, hence the static schedule.
func selectMerges[E matrix.Element[E]](ctx context.Context, m *matrix.Matrix[E], tr *matrix.Transpose, cwmax, cbound int) ([]uint32, error) {
	pool := m.Pool()
	rn := tr.Rn

	// columns of larger index have fewer rows, so a static split would be
	// unbalanced here
	cost := make([]int32, rn)
	err := pool.Dynamic(ctx, 0, rn, parallel.DefaultGrain, func(_, c int) error {
		cost[c] = mergeCost(m, tr, c, cwmax)
		return nil
	})
	if err != nil {
		return nil, err
	}

	workers := pool.Workers()
	count := make([][]uint32, workers)
	bound := int32(cbound) //nolint:gosec // cbound grows by a small increment per pass

	err = pool.Static(ctx, 0, rn, func(t, lo, hi int) error {
		tc := make([]uint32, cbound+1)
		for c := lo; c < hi; c++ {
			if k := cost[c]; k <= bound {
				tc[k]++
			}
		}
		count[t] = tc
		return nil
	})
	if err != nil {
		return nil, err
	}

	var s uint32
	for k := 0; k <= cbound; k++ {
		for t := 0; t < workers; t++ {
			if count[t] == nil {
				continue
			}
			n := count[t][k]
			count[t][k] = s
			s += n
		}
	}

	L := make([]uint32, s)
	err = pool.Static(ctx, 0, rn, func(t, lo, hi int) error {
		tc := count[t]
		for c := lo; c < hi; c++ {
			if k := cost[c]; k <= bound {
				L[tc[k]] = uint32(c) //nolint:gosec // c < Rn
				tc[k]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return L, nil
}
