package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TyrionQu/FactorMethods/internal/matrix"
	"github.com/TyrionQu/FactorMethods/testutil"
)

func TestMergeCost(t *testing.T) {
	m := build(t, 1, 256, matrix.Config{Cols: 10},
		plain(
			[]uint32{9},
			[]uint32{1, 2, 3, 8},
			[]uint32{1, 2, 8},
			[]uint32{4, 5, 6, 7, 8},
			[]uint32{3, 6},
		))
	ctx := context.Background()
	require.NoError(t, m.ComputeWeights(ctx, 3))
	tr, err := m.BuildTranspose(ctx, 0, 3)
	require.NoError(t, err)

	costs := map[uint32]int32{}
	for c := 0; c < tr.Rn; c++ {
		costs[tr.Column(c)] = mergeCost(m, tr, c, 3)
	}

	assert.Equal(t, int32(0), costs[9], "width 1")
	// width 3, shortest row 3: 2*1 - 3 + 3
	assert.Equal(t, int32(2), costs[8])
	// width 2, shortest row 3: 1*1 - 3 + 3
	assert.Equal(t, int32(1), costs[1])
	// width 2, shortest row 2: 0 - 2 + 3
	assert.Equal(t, int32(1), costs[3])

	for c := 0; c < tr.Rn; c++ {
		if tr.Width(c) > 2 {
			assert.Equal(t, int32(infeasible), mergeCost(m, tr, c, 2))
		}
	}
}

func TestMergeCost_StaysPositive(t *testing.T) {
	m := build(t, 1, 256, matrix.Config{Cols: 4},
		plain([]uint32{2}, []uint32{2}, []uint32{2}, []uint32{2}, []uint32{1, 2}))
	ctx := context.Background()
	require.NoError(t, m.ComputeWeights(ctx, 8))
	tr, err := m.BuildTranspose(ctx, 0, 8)
	require.NoError(t, err)

	for c := 0; c < tr.Rn; c++ {
		if tr.Width(c) > 1 {
			assert.Equal(t, int32(1), mergeCost(m, tr, c, 8))
		}
	}
}

func TestSelectMerges_SortedByCost(t *testing.T) {
	rng := testutil.NewRNG(11)
	rows := rng.SparseRows(600, 400, 2, 9)
	m := build(t, 4, 1024, matrix.Config{Cols: 400, MaxWeight: 6}, toPlain(rows))

	ctx := context.Background()
	require.NoError(t, m.ComputeWeights(ctx, 6))
	tr, err := m.BuildTranspose(ctx, 0, 6)
	require.NoError(t, err)

	const cbound = 20
	L, err := selectMerges(ctx, m, tr, 6, cbound)
	require.NoError(t, err)

	want := 0
	for c := 0; c < tr.Rn; c++ {
		if mergeCost(m, tr, c, 6) <= cbound {
			want++
		}
	}
	require.Len(t, L, want)

	seen := make(map[uint32]bool, len(L))
	for k, c := range L {
		assert.False(t, seen[c], "bucket %d listed twice", c)
		seen[c] = true
		if k > 0 {
			assert.LessOrEqual(t, mergeCost(m, tr, int(L[k-1]), 6), mergeCost(m, tr, int(c), 6))
		}
	}
}

func TestSelectMerges_Empty(t *testing.T) {
	m := build(t, 2, 256, matrix.Config{Cols: 4},
		plain([]uint32{1, 2}, []uint32{1, 2}, []uint32{1, 2}))
	ctx := context.Background()
	require.NoError(t, m.ComputeWeights(ctx, 2))
	tr, err := m.BuildTranspose(ctx, 0, 2)
	require.NoError(t, err)

	L, err := selectMerges(ctx, m, tr, 2, bias)
	require.NoError(t, err)
	assert.Empty(t, L)
}
