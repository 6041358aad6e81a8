package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionalAllocatorReplay(t *testing.T) {
	// A sequential pass produces the address layout.
	source := New[uint64]()
	la := source.NewLocalAllocator()

	type record struct {
		addr Address
		data []uint64
	}
	var records []record
	for i := 0; i < 5000; i++ {
		length := 1 + (i*13)%100
		if i%1000 == 999 {
			length = PageSize + 11
		}
		data := make([]uint64, length)
		for j := range data {
			data[j] = uint64(i)<<20 | uint64(j)
		}
		records = append(records, record{addr: la.Insert(data), data: data})
	}

	// A positional pass over a fresh arena reproduces it, out of order
	// and concurrently.
	replay := New[uint64]()

	const workers = 4
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			pa := replay.NewLocalPositionalAllocator()
			for i := w; i < len(records); i += workers {
				pa.InsertAt(records[i].addr, records[i].data)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, source.PageCount(), replay.PageCount())

	pages := replay.Pages()
	for _, rec := range records {
		page := pages[rec.addr.PageIndex()]
		require.NotNil(t, page)
		got := page[rec.addr.IndexInPage() : rec.addr.IndexInPage()+len(rec.data)]
		for j, want := range rec.data {
			require.Equal(t, want, got[j])
		}
	}
}

func TestPositionalAllocatorProvisionsInterveningPages(t *testing.T) {
	a := New[uint64]()
	pa := a.NewLocalPositionalAllocator()

	// Writing at a high address provisions every page up to it.
	addr := Address(7<<PageShift | 42)
	pa.InsertAt(addr, []uint64{1, 2, 3})

	assert.Equal(t, 8, a.PageCount())
	pages := a.Pages()
	require.Len(t, pages, 8)
	for i, page := range pages {
		require.NotNil(t, page, "page %d", i)
		require.Len(t, page, PageSize)
	}
	assert.Equal(t, uint64(1), pages[7][42])
	assert.Equal(t, uint64(3), pages[7][44])
}

func TestPositionalAllocatorOversize(t *testing.T) {
	a := New[uint64]()
	pa := a.NewLocalPositionalAllocator()

	huge := make([]uint64, PageSize+77)
	for i := range huge {
		huge[i] = uint64(i) + 1000
	}
	addr := Address(3 << PageShift)
	pa.InsertAt(addr, huge)

	pages := a.Pages()
	require.GreaterOrEqual(t, len(pages), 4)

	// Pages before the record are standard; the record's page is the
	// caller's buffer at full length.
	for i := 0; i < 3; i++ {
		require.Len(t, pages[i], PageSize)
	}
	require.Len(t, pages[3], PageSize+77)
	assert.Equal(t, uint64(1000), pages[3][0])
	assert.Equal(t, uint64(1000+PageSize+76), pages[3][PageSize+76])
}

func TestPositionalAllocatorIdempotentClaims(t *testing.T) {
	a := New[uint64]()
	pa := a.NewLocalPositionalAllocator()

	// Several records into the same page raise the claim only once.
	pa.InsertAt(Address(0), []uint64{1})
	pa.InsertAt(Address(100), []uint64{2})
	pa.InsertAt(Address(PageSize-1), []uint64{3})

	assert.Equal(t, 1, a.PageCount())
	page := a.Pages()[0]
	assert.Equal(t, uint64(1), page[0])
	assert.Equal(t, uint64(2), page[100])
	assert.Equal(t, uint64(3), page[PageSize-1])
}

func TestPositionalAllocatorRecordCrossingPagePanics(t *testing.T) {
	a := New[uint64]()
	pa := a.NewLocalPositionalAllocator()

	assert.Panics(t, func() {
		pa.InsertAt(Address(PageSize-1), []uint64{1, 2})
	})
}
