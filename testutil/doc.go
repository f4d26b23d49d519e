// Package testutil provides testing utilities for starscan.
//
// This package is intended for use in tests and benchmarks only.
// It builds synthetic star systems, encodes shards in every supported
// codec, and writes small corpora into a blob store.
//
// # Building Systems
//
//	sys := testutil.System("Alpha AB-C d1-23", 10, 0, 0,
//	    testutil.Body("Star", "G (White-Yellow) Star", model.NoParent),
//	    testutil.Body("Planet", "Water world", 0, testutil.Gravity(0.9)),
//	)
//
// # Writing Shards
//
//	testutil.PutShard(t, store, "sectors/Alpha.jsonl.gz", sys1, sys2)
//
// # Random Corpora
//
//	rng := testutil.NewRNG(4711)
//	systems := rng.Systems("Alpha", 100)
package testutil
