// Package testutil provides testing utilities for byteslice.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG for generating column codes and a
// row-at-a-time reference for checking scan results.
//
// # Random Codes
//
//	rng := testutil.NewRNG(seed)
//	codes := rng.Codes(1<<20, 12)         // uniform 12-bit codes
//	skewed := rng.ZipfCodes(1<<20, 12, 1.5) // power-law codes
//
// # Reference Results
//
//	want := testutil.MatchPositions(codes, func(v uint64) bool { return v < lit })
package testutil
