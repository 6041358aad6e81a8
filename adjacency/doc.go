// Package adjacency packs variable-length neighbor lists into paged
// storage for the remapped id space.
//
// Each node's ascending target ids are delta-encoded as varints and
// written through a bump allocator, so a list costs a few bytes per
// neighbor instead of eight. Degrees and list addresses live in dense
// side arrays indexed by node. An optional block codec (LZ4 or ZSTD)
// compresses the packed form on top of the delta encoding, trading
// decode work for memory on large lists.
//
// # Building
//
// A Builder is created for a known node count; import workers append
// through per-worker Appenders in parallel, each owning a sequential
// cursor into the shared storage. Every node is appended by exactly one
// worker. Build seals the result into a List.
//
// # Reading
//
// List.Targets decodes a fresh copy; Cursor streams a list without
// allocating, reusing its decode scratch across nodes. Lists larger
// than a storage page are held as dedicated oversize pages, so a list
// is always contiguous in memory regardless of length.
package adjacency
