package sparse

import "sync/atomic"

// DrainingBatch carries one page claimed from a DrainingIterator. Offset
// is the array index of the page's first element. Batches are reusable
// across Next calls; allocate one per draining goroutine.
type DrainingBatch[T any] struct {
	Page   []T
	Offset uint64
}

// DrainingIterator hands out an array's pages exactly once each,
// clearing them from the source as it goes so the backing memory can be
// reclaimed page by page. Multiple goroutines may call Next on the same
// iterator; each page is claimed by exactly one of them.
//
// Draining is destructive and must not overlap with reads of the source
// array.
type DrainingIterator[T any] struct {
	pages  [][]T
	cursor atomic.Int64
}

func newDrainingIterator[T any](pages [][]T) *DrainingIterator[T] {
	return &DrainingIterator[T]{pages: pages}
}

// NewBatch returns an empty batch for use with Next.
func (it *DrainingIterator[T]) NewBatch() *DrainingBatch[T] {
	return &DrainingBatch[T]{}
}

// Next claims the next remaining page into batch and reports whether one
// was found. Pages that were never materialized in the source are
// skipped. Once Next returns false the iterator is exhausted for all
// callers.
func (it *DrainingIterator[T]) Next(batch *DrainingBatch[T]) bool {
	for {
		idx := it.cursor.Add(1) - 1
		if idx >= int64(len(it.pages)) {
			return false
		}

		page := it.pages[idx]
		it.pages[idx] = nil
		if page == nil {
			continue
		}

		batch.Page = page
		batch.Offset = uint64(idx) << PageShift
		return true
	}
}
