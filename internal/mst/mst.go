package mst

import (
	"errors"
	"math"
)

// MaxVertices is the largest graph handled.
const MaxVertices = 32

// ErrDimensionMismatch is returned for a graph with no vertices or more
// than MaxVertices.
var ErrDimensionMismatch = errors.New("mst: dimension out of range")

// Costs is a dense symmetric cost matrix. The zero value is an empty graph;
// reuse one per worker with Reset.
type Costs struct {
	n int
	c [MaxVertices * MaxVertices]int32
}

// Reset prepares the matrix for a graph on n vertices.
func (m *Costs) Reset(n int) error {
	if n < 1 || n > MaxVertices {
		return ErrDimensionMismatch
	}
	m.n = n
	return nil
}

// Len returns the number of vertices.
func (m *Costs) Len() int { return m.n }

// Set stores the cost of edge {i, k}.
func (m *Costs) Set(i, k int, c int32) {
	m.c[i*MaxVertices+k] = c
	m.c[k*MaxVertices+i] = c
}

// At returns the cost of edge {i, k}.
func (m *Costs) At(i, k int) int32 {
	return m.c[i*MaxVertices+k]
}

// Tree is a spanning tree as edges in insertion order: edge e joins
// Father[e], already in the tree, to Son[e].
type Tree struct {
	Father [MaxVertices - 1]int
	Son    [MaxVertices - 1]int
	Edges  int
	Weight int
}

// MinimumSpanningTree runs Prim's algorithm from vertex 0 and writes the
// tree into t. Ties go to the smallest vertex.
//
// Time:  O(n²).
// Space: O(n).
func MinimumSpanningTree(m *Costs, t *Tree) error {
	n := m.n
	if n < 1 || n > MaxVertices {
		return ErrDimensionMismatch
	}

	var (
		inTree   [MaxVertices]bool
		bestCost [MaxVertices]int32
		parent   [MaxVertices]int
	)
	for v := 1; v < n; v++ {
		bestCost[v] = m.At(0, v)
		parent[v] = 0
	}
	inTree[0] = true
	t.Edges, t.Weight = 0, 0

	for it := 1; it < n; it++ {
		u, minW := -1, int32(math.MaxInt32)
		for v := 1; v < n; v++ {
			if !inTree[v] && (u < 0 || bestCost[v] < minW) {
				minW, u = bestCost[v], v
			}
		}

		inTree[u] = true
		t.Father[t.Edges] = parent[u]
		t.Son[t.Edges] = u
		t.Edges++
		t.Weight += int(minW)

		for v := 1; v < n; v++ {
			if c := m.At(u, v); !inTree[v] && c < bestCost[v] {
				bestCost[v] = c
				parent[v] = u
			}
		}
	}
	return nil
}
