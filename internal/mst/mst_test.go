package mst

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromRows(rows [][]int32) *Costs {
	var m Costs
	_ = m.Reset(len(rows))
	for i := range rows {
		for k := i + 1; k < len(rows); k++ {
			m.Set(i, k, rows[i][k])
		}
	}
	return &m
}

// kruskal is the reference total weight.
func kruskal(m *Costs) int {
	type edge struct {
		i, k int
		c    int32
	}
	var edges []edge
	for i := 0; i < m.Len(); i++ {
		for k := i + 1; k < m.Len(); k++ {
			edges = append(edges, edge{i, k, m.At(i, k)})
		}
	}
	sort.Slice(edges, func(a, b int) bool { return edges[a].c < edges[b].c })

	parent := make([]int, m.Len())
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}

	total := 0
	for _, e := range edges {
		a, b := find(e.i), find(e.k)
		if a != b {
			parent[a] = b
			total += int(e.c)
		}
	}
	return total
}

func TestMST_Path(t *testing.T) {
	m := fromRows([][]int32{
		{0, 1, 2, 2},
		{1, 0, 1, 2},
		{2, 1, 0, 1},
		{2, 2, 1, 0},
	})
	var tree Tree
	require.NoError(t, MinimumSpanningTree(m, &tree))

	assert.Equal(t, 3, tree.Edges)
	assert.Equal(t, 3, tree.Weight)
	assert.Equal(t, []int{0, 1, 2}, tree.Father[:tree.Edges])
	assert.Equal(t, []int{1, 2, 3}, tree.Son[:tree.Edges])
}

func TestMST_FirstEdgeFromRoot(t *testing.T) {
	m := fromRows([][]int32{
		{0, 9, 9, 5},
		{9, 0, 1, 9},
		{9, 1, 0, 2},
		{5, 9, 2, 0},
	})
	var tree Tree
	require.NoError(t, MinimumSpanningTree(m, &tree))

	assert.Equal(t, 0, tree.Father[0])
	assert.Equal(t, 3, tree.Son[0])
	assert.Equal(t, 8, tree.Weight)

	// every father joined the tree before its son
	seen := map[int]bool{0: true}
	for e := 0; e < tree.Edges; e++ {
		assert.True(t, seen[tree.Father[e]])
		seen[tree.Son[e]] = true
	}
	assert.Len(t, seen, 4)
}

func TestMST_TiesPreferSmallestVertex(t *testing.T) {
	m := fromRows([][]int32{
		{0, 4, 4, 4},
		{4, 0, 4, 4},
		{4, 4, 0, 4},
		{4, 4, 4, 0},
	})
	var tree Tree
	require.NoError(t, MinimumSpanningTree(m, &tree))
	assert.Equal(t, []int{0, 0, 0}, tree.Father[:3])
	assert.Equal(t, []int{1, 2, 3}, tree.Son[:3])
}

func TestMST_SingleVertex(t *testing.T) {
	var m Costs
	require.NoError(t, m.Reset(1))
	var tree Tree
	require.NoError(t, MinimumSpanningTree(&m, &tree))
	assert.Zero(t, tree.Edges)
	assert.Zero(t, tree.Weight)
}

func TestMST_Dimensions(t *testing.T) {
	var m Costs
	assert.ErrorIs(t, m.Reset(0), ErrDimensionMismatch)
	assert.ErrorIs(t, m.Reset(MaxVertices+1), ErrDimensionMismatch)
	assert.ErrorIs(t, MinimumSpanningTree(&m, &Tree{}), ErrDimensionMismatch)
}

func TestMST_MatchesKruskal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(MaxVertices-1)
		var m Costs
		require.NoError(t, m.Reset(n))
		for i := 0; i < n; i++ {
			for k := i + 1; k < n; k++ {
				m.Set(i, k, int32(rng.Intn(60)))
			}
		}
		var tree Tree
		require.NoError(t, MinimumSpanningTree(&m, &tree))
		assert.Equal(t, n-1, tree.Edges)
		assert.Equal(t, kruskal(&m), tree.Weight, "trial %d", trial)
	}
}
