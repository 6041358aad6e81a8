// Package testutil provides testing utilities for hugego.
//
// This package is intended for use in tests, benchmarks, and example
// programs only. It provides deterministic generators for the shapes of
// data a bulk graph import sees: sparse original id spaces, power-law
// degree distributions, and sorted target lists.
//
// # Graph Data Generation
//
//	rng := testutil.NewRNG(seed)
//	ids := rng.OriginalIDs(100_000, 1<<16) // sorted, distinct, gappy
//	order := rng.Shuffled(ids)             // recording order
//	degrees := rng.ZipfDegrees(len(ids), 1000, 1.5)
//	targets := rng.Targets(uint64(len(ids)), degrees[0])
package testutil
