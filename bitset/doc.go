// Package bitset provides two bitsets tuned for different sides of a
// bulk load.
//
// Atomic is a lock-free segmented bitset for concurrent writers:
//   - Segmented design: 65536-bit segments (1024 uint64 words each)
//   - Lock-free: atomic.Pointer for the segment table, atomic.Uint64 words
//   - Grows on demand, so writers need no agreed capacity
//
// Fast is a plain single-goroutine bitset with a dirty list, so
// clearing between rounds costs only the bits that were set.
//
// Used internally for:
//   - Duplicate detection over original node ids during import
//   - Scratch membership checks in single-threaded passes
package bitset
