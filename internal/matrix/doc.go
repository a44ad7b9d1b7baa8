// Package matrix holds the sparse relation matrix reduced by the merge engine.
//
// Rows live in arena pages and are addressed through one slot per row. Each
// row is a strictly ascending list of column references. Two element kinds
// exist: Plain, a bare column index for factorization over GF(2), and Exp, a
// column index with a signed exponent for discrete logarithms. Matrix is
// generic over the element kind; only row addition differs between them.
//
// Column weights are reference counts saturated just above the maximum merge
// width. They are computed once, then maintained incrementally by row
// additions and removals with atomic updates, so concurrent merges on
// disjoint rows may touch shared columns.
//
// The transpose restricted to light columns is rebuilt every pass in CSR
// form. Renumbering drops empty columns and relabels the rest.
package matrix
