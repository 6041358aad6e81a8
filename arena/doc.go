// Package arena provides a paged bump allocator for the variable-length
// records of a bulk import, typically packed adjacency lists.
//
// # Layout
//
// Memory is organized as an append-only table of fixed-size pages of
// 1<<18 elements. A record lives at an Address that encodes its page
// index and offset; records never straddle standard pages. Records
// longer than one page become dedicated oversize pages that occupy a
// single page index, so readers always resolve a record from its start
// address alone.
//
// # Concurrency Model
//
// All writes go through per-goroutine cursors:
//
//   - LocalAllocator appends records and claims fresh pages on demand.
//   - LocalPositionalAllocator re-writes records at addresses produced
//     by an earlier sequential pass.
//
// Any number of cursors of the same kind may run concurrently; sequential
// and positional cursors must not run concurrently against the same
// arena. Page index claims are atomic fetch-and-add (sequential) or
// compare-and-swap maxima (positional); the grow lock is only taken when
// the page table itself must be extended, so steady-state inserts are
// lock-free. After a grow returns, every goroutine observes a fully
// provisioned table.
//
// # Memory Management
//
// Pages default to 64-byte aligned Go heap slices. WithOffHeapPages
// switches standard pages to anonymous memory mappings outside the
// garbage collector; Close unmaps them. The arena never frees individual
// records: memory is reclaimed wholesale when the arena is dropped or
// closed. Exhausting the page index space panics with ErrTooManyPages;
// an import that large cannot proceed.
package arena
