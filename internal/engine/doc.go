// Package engine is the search coordinator for starscan.
//
// A search runs in two phases:
//   - planning resolves the request mode against the catalog (or a store
//     listing) into one Task per shard, each carrying the reason it was
//     selected
//   - execution runs the tasks on a fixed WorkerPool; every task owns its
//     record stream and matcher state and sends matches through a bounded
//     channel that the Coordinator drains, merges and sorts
//
// Planning never opens a shard, so a Plan doubles as the dry-run output.
package engine
