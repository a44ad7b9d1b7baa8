// Package mst computes minimum spanning trees of small complete graphs.
//
// The merge engine combines the rows sharing a column along a spanning tree
// of the graph whose edge weights are the lengths of pairwise row sums. The
// graphs have at most MaxVertices vertices, so a dense O(n²) Prim over a
// fixed-size cost matrix is both the simplest and the fastest choice.
//
// Edges are reported in the order Prim adds them. The first edge always
// hangs off vertex 0, and the father of every edge is already in the tree
// when the edge is added.
package mst
