package sparse

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/hugego/internal/pageutil"
)

// SliceArray is a sealed sparse long-indexed array of slice values.
// A slot is set exactly when it holds a non-nil slice; unset slots read
// as the shared default slice. Reads are lock-free and safe for
// unsynchronized concurrent use.
type SliceArray[E Number] struct {
	capacity   uint64
	defaultVal []E
	pages      [][][]E
}

// Capacity returns an exclusive upper bound on the indexes the array
// holds values for.
func (a *SliceArray[E]) Capacity() uint64 {
	return a.capacity
}

// Get returns the slice at index. Unset indexes return the default
// slice, which is shared: callers must not mutate the result.
func (a *SliceArray[E]) Get(index uint64) []E {
	pageIdx := pageutil.PageIndex(index, PageShift)
	if pageIdx < len(a.pages) {
		if page := a.pages[pageIdx]; page != nil {
			if value := page[pageutil.IndexInPage(index, PageMask)]; value != nil {
				return value
			}
		}
	}
	return a.defaultVal
}

// Contains reports whether index was explicitly set. Unlike the numeric
// arrays, a stored slice equal to the default still counts as set; only
// never-written slots read as absent.
func (a *SliceArray[E]) Contains(index uint64) bool {
	pageIdx := pageutil.PageIndex(index, PageShift)
	if pageIdx < len(a.pages) {
		if page := a.pages[pageIdx]; page != nil {
			return page[pageutil.IndexInPage(index, PageMask)] != nil
		}
	}
	return false
}

// DrainingIterator returns a one-shot iterator that hands out the
// array's pages and clears them from the array as it goes. Draining must
// not run concurrently with reads; multiple goroutines may share one
// iterator.
func (a *SliceArray[E]) DrainingIterator() *DrainingIterator[[]E] {
	return newDrainingIterator(a.pages)
}

// SliceBuilder accumulates slice values for a SliceArray under
// concurrent writes, with the same contract as Builder.
type SliceBuilder[E Number] struct {
	defaultVal []E
	trackAlloc func(int64)

	lock  sync.Mutex
	pages atomic.Pointer[[]atomic.Pointer[[][]E]]
}

// NewSliceBuilder creates a builder whose unset indexes read as
// defaultValue.
func NewSliceBuilder[E Number](defaultValue []E, opts ...BuilderOption) *SliceBuilder[E] {
	o := builderOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	b := &SliceBuilder[E]{
		defaultVal: defaultValue,
		trackAlloc: o.trackAlloc,
	}
	table := make([]atomic.Pointer[[][]E], pageutil.NumPagesFor(o.initialCapacity, PageShift, PageMask))
	b.pages.Store(&table)
	return b
}

// Set stores value at index. The array takes ownership of value; the
// caller must not mutate it afterwards. Storing nil is not meaningful:
// slots count as set exactly when they hold a non-nil slice.
func (b *SliceBuilder[E]) Set(index uint64, value []E) {
	b.page(index)[pageutil.IndexInPage(index, PageMask)] = value
}

// Build seals the accumulated values into a SliceArray. The pages are
// handed over, not copied; the builder must not be used afterwards.
func (b *SliceBuilder[E]) Build() *SliceArray[E] {
	table := *b.pages.Load()
	pages := make([][][]E, len(table))
	for i := range table {
		if page := table[i].Load(); page != nil {
			pages[i] = *page
		}
	}
	return &SliceArray[E]{
		capacity:   pageutil.CapacityFor(len(pages), PageShift),
		defaultVal: b.defaultVal,
		pages:      pages,
	}
}

// page returns the page holding index, materializing it if needed.
func (b *SliceBuilder[E]) page(index uint64) [][]E {
	pageIdx := pageutil.PageIndex(index, PageShift)
	table := b.pages.Load()
	if pageIdx < len(*table) {
		if page := (*table)[pageIdx].Load(); page != nil {
			return *page
		}
	}
	return b.allocatePage(pageIdx)
}

func (b *SliceBuilder[E]) allocatePage(pageIdx int) [][]E {
	b.lock.Lock()
	defer b.lock.Unlock()

	table := b.pages.Load()
	if pageIdx >= len(*table) {
		table = b.growTable(pageIdx + 1)
	}
	slot := &(*table)[pageIdx]
	if page := slot.Load(); page != nil {
		return *page
	}

	// Slice pages start out all-nil; no default fill.
	page := make([][]E, PageSize)
	if b.trackAlloc != nil {
		var header []E
		b.trackAlloc(int64(PageSize) * int64(unsafe.Sizeof(header)))
	}
	slot.Store(&page)
	return page
}

// growTable extends the page table to at least minSize slots. Caller
// holds the lock.
func (b *SliceBuilder[E]) growTable(minSize int) *[]atomic.Pointer[[][]E] {
	cur := *b.pages.Load()
	next := make([]atomic.Pointer[[][]E], pageutil.Oversize(len(cur), minSize))
	for i := range cur {
		next[i].Store(cur[i].Load())
	}
	b.pages.Store(&next)
	return &next
}
