package dense

import (
	"unsafe"

	"github.com/hupe1980/hugego/internal/pageutil"
)

const (
	// PageShift is the power-of-two exponent of the page size. It
	// matches the sparse page geometry so pages drained from a sparse
	// array can be adopted without copying.
	PageShift = 12
	// PageSize is the number of values per page.
	PageSize = 1 << PageShift
	// PageMask extracts the offset within a page from an index.
	PageMask = PageSize - 1
)

// Number is the set of primitive value types a dense array can hold.
type Number interface {
	~byte | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Option configures a dense array.
type Option func(*options)

type options struct {
	trackAlloc func(int64)
}

// WithAllocationTracking registers fn to be called with the byte size of
// every page the array allocates. Pages adopted through FromPages are
// not reported; their allocation was already accounted for where they
// were built.
func WithAllocationTracking(fn func(int64)) Option {
	return func(o *options) {
		o.trackAlloc = fn
	}
}

// Array is a fixed-size paged array indexed from 0 to Size()-1. All
// pages are materialized up front; the last page is trimmed to the
// logical size. Indexes are unchecked: out-of-range access panics.
//
// Writes must be single-goroutine or partitioned over disjoint index
// ranges. Reads are lock-free once the writing phase is over.
type Array[V Number] struct {
	size  uint64
	pages [][]V
}

// New creates an array of the given logical size with all values zero.
func New[V Number](size uint64, opts ...Option) *Array[V] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	numPages := pageutil.NumPagesFor(size, PageShift, PageMask)
	pages := make([][]V, numPages)
	for i := range pages {
		length := PageSize
		if i == numPages-1 {
			length = pageutil.ExclusiveIndexOfPage(size, PageMask)
		}
		pages[i] = make([]V, length)
		if o.trackAlloc != nil {
			var zero V
			o.trackAlloc(int64(length) * int64(unsafe.Sizeof(zero)))
		}
	}
	return &Array[V]{size: size, pages: pages}
}

// FromPages creates an array of the given logical size over pages
// drained from a sparse array, taking ownership without copying. The
// slice must hold exactly the pages the size requires; nil slots (pages
// the source never materialized) become zero pages, and the final page
// is trimmed in place to the logical size.
func FromPages[V Number](size uint64, pages [][]V, opts ...Option) *Array[V] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	lastLen := pageutil.ExclusiveIndexOfPage(size, PageMask)
	for i := range pages {
		length := PageSize
		if i == len(pages)-1 {
			length = lastLen
		}
		if pages[i] == nil {
			pages[i] = make([]V, length)
			if o.trackAlloc != nil {
				var zero V
				o.trackAlloc(int64(length) * int64(unsafe.Sizeof(zero)))
			}
		} else if len(pages[i]) > length {
			pages[i] = pages[i][:length]
		}
	}
	return &Array[V]{size: size, pages: pages}
}

// Size returns the logical element count.
func (a *Array[V]) Size() uint64 {
	return a.size
}

// SizeOfBytes returns the memory held by the array's pages.
func (a *Array[V]) SizeOfBytes() int64 {
	var zero V
	var total int64
	for _, page := range a.pages {
		total += int64(len(page)) * int64(unsafe.Sizeof(zero))
	}
	return total
}

// Get returns the value at index.
func (a *Array[V]) Get(index uint64) V {
	return a.pages[pageutil.PageIndex(index, PageShift)][pageutil.IndexInPage(index, PageMask)]
}

// Set stores value at index.
func (a *Array[V]) Set(index uint64, value V) {
	a.pages[pageutil.PageIndex(index, PageShift)][pageutil.IndexInPage(index, PageMask)] = value
}

// AddTo adds delta to the value at index.
func (a *Array[V]) AddTo(index uint64, delta V) {
	a.pages[pageutil.PageIndex(index, PageShift)][pageutil.IndexInPage(index, PageMask)] += delta
}

// Fill sets every index to value.
func (a *Array[V]) Fill(value V) {
	for _, page := range a.pages {
		for i := range page {
			page[i] = value
		}
	}
}

// SetAll sets every index to fn(index).
func (a *Array[V]) SetAll(fn func(index uint64) V) {
	for pageIdx, page := range a.pages {
		base := pageutil.CapacityFor(pageIdx, PageShift)
		for i := range page {
			page[i] = fn(base + uint64(i))
		}
	}
}
