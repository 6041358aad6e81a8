package arena

import (
	"github.com/hupe1980/hugego/internal/pageutil"
)

// LocalAllocator is a sequential write cursor over an arena. It bump
// allocates within a privately claimed page and claims a new page when
// the current one cannot hold the next record.
//
// A cursor belongs to one goroutine. Creating a cursor is cheap; it
// holds no resources and needs no cleanup.
type LocalAllocator[E Element] struct {
	arena  *Arena[E]
	top    Address
	page   []E
	offset int
}

// Insert copies data into the arena and returns the address of its first
// element. Records never straddle standard pages. Records longer than
// PageSize are adopted wholesale: the arena takes ownership of data (a
// trimmed copy is made when the backing array is larger than the record)
// and the caller must not reuse it.
//
// data must not be empty.
func (l *LocalAllocator[E]) Insert(data []E) Address {
	if PageSize-l.offset >= len(data) {
		return l.insertInCurrentPage(data)
	}
	if len(data) > PageSize {
		return l.insertOversizePage(data)
	}
	return l.insertInNewPage(data)
}

func (l *LocalAllocator[E]) insertInCurrentPage(data []E) Address {
	address := l.top + Address(l.offset)
	copy(l.page[l.offset:], data)
	l.offset += len(data)
	return address
}

func (l *LocalAllocator[E]) insertInNewPage(data []E) Address {
	idx := l.arena.allocateNewPage()
	l.top = Address(pageutil.CapacityFor(idx, PageShift))
	l.page = (*l.arena.pages.Load())[idx]
	copy(l.page, data)
	l.offset = len(data)
	return l.top
}

// insertOversizePage hands the record over as a dedicated page. The
// cursor state stays untouched, so the current page keeps filling up
// with subsequent records.
func (l *LocalAllocator[E]) insertOversizePage(data []E) Address {
	if cap(data) > len(data) {
		trimmed := make([]E, len(data))
		copy(trimmed, data)
		data = trimmed
	}
	idx := l.arena.insertExistingPage(data)
	return Address(pageutil.CapacityFor(idx, PageShift))
}

// LocalPositionalAllocator writes records at addresses produced by an
// earlier sequential pass over an equivalent arena. It raises the page
// claims of its arena so that the same addresses stay valid, without
// assuming any write order between cursors.
//
// A cursor belongs to one goroutine.
type LocalPositionalAllocator[E Element] struct {
	arena    *Arena[E]
	capacity uint64
}

// InsertAt copies data to the given address. Records of at most PageSize
// elements must lie within a single page, which holds for every address a
// sequential cursor returns. Longer records are adopted as a dedicated
// page like LocalAllocator does for oversize records; their address must
// be page-aligned.
func (p *LocalPositionalAllocator[E]) InsertAt(addr Address, data []E) {
	pageIdx := addr.PageIndex()

	if len(data) > PageSize {
		if cap(data) > len(data) {
			trimmed := make([]E, len(data))
			copy(trimmed, data)
			data = trimmed
		}
		p.arena.insertMultiplePages(pageIdx, data)
		if needed := pageutil.CapacityFor(pageIdx+1, PageShift); needed > p.capacity {
			p.capacity = needed
		}
		return
	}

	if needed := pageutil.CapacityFor(pageIdx+1, PageShift); needed > p.capacity {
		p.arena.insertMultiplePages(pageIdx, nil)
		p.capacity = needed
	}

	page := (*p.arena.pages.Load())[pageIdx]
	n := copy(page[addr.IndexInPage():], data)
	if n < len(data) {
		panic("arena: record crosses page boundary")
	}
}
