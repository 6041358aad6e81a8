package arena

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/hugego/internal/conv"
	"github.com/hupe1980/hugego/internal/mem"
	"github.com/hupe1980/hugego/internal/mmap"
	"github.com/hupe1980/hugego/internal/pageutil"
)

// ErrTooManyPages is the panic value raised when the page index space
// is exhausted. The arena addresses at most MaxPages pages; running into
// the ceiling is fatal for the import.
var ErrTooManyPages = errors.New("arena: page index space exhausted")

const (
	// PageShift is the power-of-two exponent of the page size.
	PageShift = 18
	// PageSize is the number of elements per standard page.
	PageSize = 1 << PageShift
	// PageMask extracts the offset within a page from an Address.
	PageMask = PageSize - 1

	// MaxPages limits the page index space.
	MaxPages = 1<<31 - 1

	noSkip = -1
)

// Element is the set of primitive element types an arena can hold.
type Element interface {
	~byte | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Address locates a record written into an arena. The upper bits carry
// the page index, the lower PageShift bits the offset within that page.
type Address uint64

// PageIndex returns the page the address points into.
func (a Address) PageIndex() int {
	return int(a >> PageShift)
}

// IndexInPage returns the offset of the address within its page.
func (a Address) IndexInPage() int {
	return int(a & PageMask)
}

// Arena is a paged bump allocator for variable-length records.
//
// Records are written through per-goroutine cursors (LocalAllocator,
// LocalPositionalAllocator) and addressed by the Address they were
// written at. The arena only ever grows; individual records cannot be
// freed. Page claims are decoupled from page provisioning: cursors claim
// page indexes with atomic counters and only serialize on growLock when
// the page table itself must be extended.
type Arena[E Element] struct {
	pages     atomic.Pointer[[][]E]
	allocated atomic.Int32
	growLock  sync.Mutex

	offHeap    bool
	trackAlloc func(int64)
	elemSize   int64

	// mappings backs off-heap pages; guarded by growLock.
	mappings []*mmap.Mapping
}

// Option configures an Arena.
type Option func(*options)

type options struct {
	offHeap    bool
	trackAlloc func(int64)
}

// WithOffHeapPages makes the arena carve standard pages out of anonymous
// memory mappings instead of the Go heap. Off-heap pages are released by
// Close; slices into the arena become invalid at that point. Oversize
// records are caller memory and stay on-heap either way.
func WithOffHeapPages() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithAllocationTracking registers fn to be called with the byte size of
// every page the arena takes ownership of. The hook may run under the
// arena's grow lock: it must be fast and must not call back into the arena.
func WithAllocationTracking(fn func(int64)) Option {
	return func(o *options) {
		o.trackAlloc = fn
	}
}

// New creates an empty arena.
func New[E Element](opts ...Option) *Arena[E] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var zero E
	a := &Arena[E]{
		offHeap:    o.offHeap,
		trackAlloc: o.trackAlloc,
		elemSize:   int64(unsafe.Sizeof(zero)),
	}
	empty := make([][]E, 0)
	a.pages.Store(&empty)
	return a
}

// NewLocalAllocator returns a sequential write cursor. Each goroutine
// uses its own cursor; any number of cursors may run concurrently.
func (a *Arena[E]) NewLocalAllocator() *LocalAllocator[E] {
	return &LocalAllocator[E]{arena: a, offset: PageSize}
}

// NewLocalPositionalAllocator returns a cursor that writes records at
// addresses produced by an earlier sequential pass. Sequential and
// positional cursors must not run concurrently against the same arena.
func (a *Arena[E]) NewLocalPositionalAllocator() *LocalPositionalAllocator[E] {
	return &LocalPositionalAllocator[E]{arena: a}
}

// Pages returns the page table. Intended for read-side consumers after
// all cursors are done; the result must not be modified.
func (a *Arena[E]) Pages() [][]E {
	return *a.pages.Load()
}

// PageCount returns the number of claimed pages.
func (a *Arena[E]) PageCount() int {
	return int(a.allocated.Load())
}

// Capacity returns the claimed address space in elements.
func (a *Arena[E]) Capacity() uint64 {
	return pageutil.CapacityFor(a.PageCount(), PageShift)
}

// Close releases all off-heap mappings. It is idempotent. After Close
// the arena reads as empty and slices previously handed out from
// off-heap pages are invalid.
func (a *Arena[E]) Close() error {
	a.growLock.Lock()
	defer a.growLock.Unlock()

	var err error
	for _, m := range a.mappings {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	a.mappings = nil

	empty := make([][]E, 0)
	a.pages.Store(&empty)
	a.allocated.Store(0)
	return err
}

// allocateNewPage claims the next page index and makes sure the page
// table covers it. Returns the claimed index.
func (a *Arena[E]) allocateNewPage() int {
	idx := a.allocated.Add(1) - 1
	if idx < 0 {
		panic(ErrTooManyPages)
	}
	a.grow(int(idx)+1, noSkip)
	return int(idx)
}

// insertExistingPage claims a page index for an oversize record and
// installs the caller's buffer there. Returns the claimed index.
func (a *Arena[E]) insertExistingPage(page []E) int {
	idx := a.allocated.Add(1) - 1
	if idx < 0 {
		panic(ErrTooManyPages)
	}
	a.grow(int(idx)+1, int(idx))

	// The slot may hold a fresh default page when a concurrent grow
	// overshot our claim; replacing it just drops that page.
	a.growLock.Lock()
	(*a.pages.Load())[idx] = page
	a.growLock.Unlock()

	if a.trackAlloc != nil {
		a.trackAlloc(a.elemSize * int64(len(page)))
	}
	return int(idx)
}

// insertMultiplePages raises the claimed page count to cover uptoPage and
// provisions the table. A non-nil oversizePage is installed at uptoPage
// instead of a fresh default page.
func (a *Arena[E]) insertMultiplePages(uptoPage int, oversizePage []E) {
	want, err := conv.IntToInt32(uptoPage + 1)
	if err != nil {
		panic(ErrTooManyPages)
	}
	for {
		cur := a.allocated.Load()
		if cur >= want {
			break
		}
		if a.allocated.CompareAndSwap(cur, want) {
			break
		}
	}

	if oversizePage == nil {
		a.grow(uptoPage+1, noSkip)
		return
	}

	a.grow(uptoPage+1, uptoPage)
	a.growLock.Lock()
	(*a.pages.Load())[uptoPage] = oversizePage
	a.growLock.Unlock()

	if a.trackAlloc != nil {
		a.trackAlloc(a.elemSize * int64(len(oversizePage)))
	}
}

// grow extends the page table to at least newNumPages slots, filling
// every new slot except skipPage with a fresh default page. After grow
// returns, all goroutines observe a fully provisioned table.
func (a *Arena[E]) grow(newNumPages, skipPage int) {
	if len(*a.pages.Load()) >= newNumPages {
		return
	}

	a.growLock.Lock()
	defer a.growLock.Unlock()

	cur := *a.pages.Load()
	if len(cur) >= newNumPages {
		return
	}

	next := make([][]E, newNumPages)
	copy(next, cur)
	for i := len(cur); i < newNumPages; i++ {
		if i != skipPage {
			next[i] = a.newPage()
		}
	}
	a.pages.Store(&next)
}

// newPage provisions one standard page. Caller holds growLock.
func (a *Arena[E]) newPage() []E {
	var page []E
	if a.offHeap {
		m, err := mmap.MapAnon(PageSize * int(a.elemSize))
		if err != nil {
			panic(fmt.Errorf("arena: map off-heap page: %w", err))
		}
		a.mappings = append(a.mappings, m)
		data := m.Bytes()
		page = unsafe.Slice((*E)(unsafe.Pointer(&data[0])), PageSize)
	} else {
		page = mem.AlignedSlice[E](PageSize)
	}

	if a.trackAlloc != nil {
		a.trackAlloc(a.elemSize * PageSize)
	}
	return page
}
