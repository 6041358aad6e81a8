// Package importer turns unordered streams of original node ids and
// properties into the dense mapped id space the storage layer reads.
//
// Import runs in two phases. In the recording phase, any number of
// workers push original ids into per-worker sets and stage property
// values keyed by original id; nothing is coordinated beyond handing
// each goroutine its own WorkerSet. Building then merges the sets,
// ranks the distinct ids in ascending order, and produces the IDMap:
// mapped id = rank. Property columns are remapped against the finished
// IDMap with partitioned parallel workers.
//
// Mapped ids are dense and stable for a given input set, which is what
// makes the dense arrays and adjacency lists downstream possible. The
// reverse lookup table is built by draining the rank-keyed staging
// array page by page into its final dense form, so peak memory stays
// near one copy of the table even for billions of nodes.
package importer
