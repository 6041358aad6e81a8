// Package sparse provides growable long-indexed arrays that only pay
// for the index ranges actually written.
//
// Storage is paged: indexes map onto fixed 4096-element pages, and a
// page is materialized the first time any index inside it is set. Unset
// indexes read as a per-array default value, so densely clustered ids in
// an otherwise huge index space cost memory proportional to the
// clusters, not the space.
//
// # Building and Sealing
//
// Arrays are built in two phases. A Builder (or SliceBuilder) accepts
// concurrent writes from any number of goroutines; Build seals the
// accumulated pages into an immutable Array without copying element
// data. Sealed arrays are safe for unsynchronized concurrent reads.
//
// Writes to the same index from different goroutines are not
// synchronized against each other. Callers that need deterministic
// results must partition indexes between writers; Set, SetIfAbsent and
// AddTo are atomic only with respect to page creation, not with respect
// to each other.
//
// # Draining
//
// A sealed array can be consumed page by page through a
// DrainingIterator, which detaches each page from the array as it is
// handed out. This lets a transformation pipeline release the source
// array's memory incrementally instead of holding both source and
// destination at their full size. Draining is one-shot and must not
// overlap with reads.
package sparse
