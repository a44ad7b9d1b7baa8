// Package relation reads purged relation files.
//
// A purged file starts with a header line "# nrows ncols" followed by one
// relation per line:
//
//	a,b:h1,h2,...,hk
//
// where the h are hexadecimal ideal indices (matrix columns). An index may
// repeat; the number of repeats is its exponent in the relation. Other lines
// starting with # are comments.
package relation
