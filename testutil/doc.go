// Package testutil provides testing utilities for the merge engine.
//
// This package is intended for use in tests and benchmarks only.
// It generates seeded random sparse matrices shaped like purged relation
// sets: small column indices are referenced far more often than large ones,
// so a matrix has many heavy columns and a long tail of light ones.
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.SparseRows(1000, 800, 4, 12)
//	exps := rng.Exponents(rows, 3)
//	text := testutil.FormatPurged(rows, exps, 800)
package testutil
