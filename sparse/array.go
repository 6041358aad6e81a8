package sparse

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/hugego/internal/pageutil"
)

// Array is a sealed sparse long-indexed array of numeric values. Indexes
// that were never set read as the default value. Reads are lock-free and
// safe for unsynchronized concurrent use.
type Array[V Number] struct {
	capacity   uint64
	defaultVal V
	pages      [][]V
}

// Capacity returns an exclusive upper bound on the indexes the array
// holds values for.
func (a *Array[V]) Capacity() uint64 {
	return a.capacity
}

// Get returns the value at index, or the default value for indexes that
// were never set.
func (a *Array[V]) Get(index uint64) V {
	pageIdx := pageutil.PageIndex(index, PageShift)
	if pageIdx < len(a.pages) {
		if page := a.pages[pageIdx]; page != nil {
			return page[pageutil.IndexInPage(index, PageMask)]
		}
	}
	return a.defaultVal
}

// Contains reports whether index holds a value distinct from the default.
func (a *Array[V]) Contains(index uint64) bool {
	pageIdx := pageutil.PageIndex(index, PageShift)
	if pageIdx < len(a.pages) {
		if page := a.pages[pageIdx]; page != nil {
			return page[pageutil.IndexInPage(index, PageMask)] != a.defaultVal
		}
	}
	return false
}

// DrainingIterator returns a one-shot iterator that hands out the
// array's pages and clears them from the array as it goes. Draining must
// not run concurrently with reads; multiple goroutines may share one
// iterator.
func (a *Array[V]) DrainingIterator() *DrainingIterator[V] {
	return newDrainingIterator(a.pages)
}

// Builder accumulates values for an Array under concurrent writes.
//
// Writes to distinct indexes are safe from any number of goroutines;
// writes to the same index are the callers' race to lose. The page
// table and pages materialize on first touch; steady-state writes are
// lock-free.
//
// A builder is single-use: after Build it must not be written to.
type Builder[V Number] struct {
	defaultVal V
	trackAlloc func(int64)

	lock  sync.Mutex
	pages atomic.Pointer[[]atomic.Pointer[[]V]]
}

// NewBuilder creates a builder whose unset indexes read as defaultValue.
func NewBuilder[V Number](defaultValue V, opts ...BuilderOption) *Builder[V] {
	o := builderOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Builder[V]{
		defaultVal: defaultValue,
		trackAlloc: o.trackAlloc,
	}
	table := make([]atomic.Pointer[[]V], pageutil.NumPagesFor(o.initialCapacity, PageShift, PageMask))
	b.pages.Store(&table)
	return b
}

// Set stores value at index.
func (b *Builder[V]) Set(index uint64, value V) {
	b.page(index)[pageutil.IndexInPage(index, PageMask)] = value
}

// SetIfAbsent stores value at index unless the index already holds a
// non-default value. Reports whether the value was stored.
func (b *Builder[V]) SetIfAbsent(index uint64, value V) bool {
	page := b.page(index)
	indexInPage := pageutil.IndexInPage(index, PageMask)
	if page[indexInPage] != b.defaultVal {
		return false
	}
	page[indexInPage] = value
	return true
}

// AddTo adds delta to the value at index. Unset indexes start from the
// default value.
func (b *Builder[V]) AddTo(index uint64, delta V) {
	page := b.page(index)
	page[pageutil.IndexInPage(index, PageMask)] += delta
}

// Build seals the accumulated values into an Array. The pages are handed
// over, not copied; the builder must not be used afterwards.
func (b *Builder[V]) Build() *Array[V] {
	table := *b.pages.Load()
	pages := make([][]V, len(table))
	for i := range table {
		if page := table[i].Load(); page != nil {
			pages[i] = *page
		}
	}
	return &Array[V]{
		capacity:   pageutil.CapacityFor(len(pages), PageShift),
		defaultVal: b.defaultVal,
		pages:      pages,
	}
}

// page returns the page holding index, materializing it if needed.
func (b *Builder[V]) page(index uint64) []V {
	pageIdx := pageutil.PageIndex(index, PageShift)
	table := b.pages.Load()
	if pageIdx < len(*table) {
		if page := (*table)[pageIdx].Load(); page != nil {
			return *page
		}
	}
	return b.allocatePage(pageIdx)
}

func (b *Builder[V]) allocatePage(pageIdx int) []V {
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

	page := make([]V, PageSize)
	var zero V
	if b.defaultVal != zero {
		fillPage(page, b.defaultVal)
	}
	if b.trackAlloc != nil {
		b.trackAlloc(int64(PageSize) * int64(unsafe.Sizeof(zero)))
	}
	slot.Store(&page)
	return page
}

// growTable extends the page table to at least minSize slots. Caller
// holds the lock.
func (b *Builder[V]) growTable(minSize int) *[]atomic.Pointer[[]V] {
	cur := *b.pages.Load()
	next := make([]atomic.Pointer[[]V], pageutil.Oversize(len(cur), minSize))
	for i := range cur {
		next[i].Store(cur[i].Load())
	}
	b.pages.Store(&next)
	return &next
}
