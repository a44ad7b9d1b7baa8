package testutil

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"

	"github.com/TyrionQu/FactorMethods/relation"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// column draws a column index in [0, ncols) biased toward small indices.
func (r *RNG) column(ncols int) uint32 {
	u := r.rand.Float64()
	return uint32(float64(ncols) * u * u) //nolint:gosec // < ncols
}

// SparseRows generates nrows rows with strictly ascending, distinct column
// indices below ncols and lengths in [minLen, maxLen].
func (r *RNG) SparseRows(nrows, ncols, minLen, maxLen int) [][]uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxLen = min(maxLen, ncols)
	minLen = min(minLen, maxLen)

	rows := make([][]uint32, nrows)
	for i := range rows {
		n := minLen + r.rand.Intn(maxLen-minLen+1)
		row := make([]uint32, 0, n)
		for len(row) < n {
			j := r.column(ncols)
			if !slices.Contains(row, j) {
				row = append(row, j)
			}
		}
		slices.Sort(row)
		rows[i] = row
	}
	return rows
}

// Exponents draws a positive multiplicity in [1, maxExp] for every entry of
// rows.
func (r *RNG) Exponents(rows [][]uint32, maxExp int) [][]int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	exps := make([][]int32, len(rows))
	for i, row := range rows {
		e := make([]int32, len(row))
		for k := range e {
			e[k] = int32(1 + r.rand.Intn(maxExp)) //nolint:gosec // small
		}
		exps[i] = e
	}
	return exps
}

// FormatPurged renders rows in the purged relation format: a "# nrows ncols"
// header, then one "a,b:idx,idx,..." line per row with hexadecimal column
// indices repeated by multiplicity. exps may be nil.
func FormatPurged(rows [][]uint32, exps [][]int32, ncols int) string {
	var sb strings.Builder
	w, err := relation.NewWriter(&sb, relation.Header{Rows: len(rows), Cols: ncols})
	if err != nil {
		panic(err)
	}
	var ideals []relation.Ideal
	for i, row := range rows {
		ideals = ideals[:0]
		for k, j := range row {
			e := int32(1)
			if exps != nil {
				e = exps[i][k]
			}
			ideals = append(ideals, relation.Ideal{Column: j, Exponent: e})
		}
		if err := w.Write(fmt.Sprintf("%d,%d", -int64(i)-1, 2*i+1), ideals); err != nil {
			panic(err)
		}
	}
	if err := w.Flush(); err != nil {
		panic(err)
	}
	return sb.String()
}

// ColumnWeights counts the rows referencing each column.
func ColumnWeights(rows [][]uint32, ncols int) []int {
	wt := make([]int, ncols)
	for _, row := range rows {
		for _, j := range row {
			wt[j]++
		}
	}
	return wt
}
