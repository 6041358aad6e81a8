package dense

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hugego/sparse"
)

func TestArray(t *testing.T) {
	t.Run("SetGet", func(t *testing.T) {
		a := New[uint64](2*PageSize + 10)
		assert.Equal(t, uint64(2*PageSize+10), a.Size())

		a.Set(0, 1)
		a.Set(PageSize, 2)
		a.Set(2*PageSize+9, 3)

		assert.Equal(t, uint64(1), a.Get(0))
		assert.Equal(t, uint64(2), a.Get(PageSize))
		assert.Equal(t, uint64(3), a.Get(2*PageSize+9))
		assert.Equal(t, uint64(0), a.Get(1), "untouched indexes are zero")
	})

	t.Run("LastPageTrimmed", func(t *testing.T) {
		a := New[int64](PageSize + 3)
		assert.Equal(t, int64((PageSize+3)*8), a.SizeOfBytes())

		assert.Panics(t, func() { a.Get(PageSize + 3) }, "out of range is unchecked")
	})

	t.Run("ExactPageMultiple", func(t *testing.T) {
		a := New[uint32](2 * PageSize)
		assert.Equal(t, int64(2*PageSize*4), a.SizeOfBytes())
		a.Set(2*PageSize-1, 7)
		assert.Equal(t, uint32(7), a.Get(2*PageSize-1))
	})

	t.Run("AddTo", func(t *testing.T) {
		a := New[int64](16)
		a.AddTo(4, 3)
		a.AddTo(4, -1)
		assert.Equal(t, int64(2), a.Get(4))
	})

	t.Run("Fill", func(t *testing.T) {
		a := New[float64](PageSize + 100)
		a.Fill(1.5)
		assert.Equal(t, 1.5, a.Get(0))
		assert.Equal(t, 1.5, a.Get(PageSize+99))
	})

	t.Run("SetAll", func(t *testing.T) {
		a := New[uint64](PageSize + 50)
		a.SetAll(func(i uint64) uint64 { return i * 2 })

		for _, i := range []uint64{0, 1, PageSize - 1, PageSize, PageSize + 49} {
			require.Equal(t, i*2, a.Get(i))
		}
	})

	t.Run("AllocationTracking", func(t *testing.T) {
		var tracked int64
		New[uint64](PageSize+8, WithAllocationTracking(func(bytes int64) {
			tracked += bytes
		}))
		assert.Equal(t, int64((PageSize+8)*8), tracked)
	})
}

func TestFromPages(t *testing.T) {
	t.Run("AdoptsDrainedPages", func(t *testing.T) {
		const size = 2*PageSize + 7

		b := sparse.NewBuilder[uint64](0)
		for i := uint64(0); i < size; i++ {
			b.Set(i, i+1)
		}

		it := b.Build().DrainingIterator()
		pages := make([][]uint64, 3)
		batch := it.NewBatch()
		for it.Next(batch) {
			pages[batch.Offset>>PageShift] = batch.Page
		}

		a := FromPages[uint64](size, pages)
		assert.Equal(t, uint64(size), a.Size())
		for i := uint64(0); i < size; i++ {
			require.Equal(t, i+1, a.Get(i))
		}
		assert.Equal(t, int64(size*8), a.SizeOfBytes(), "last adopted page is trimmed")
	})

	t.Run("NilSlotsBecomeZeroPages", func(t *testing.T) {
		var tracked int64
		a := FromPages[uint64](2*PageSize, make([][]uint64, 2), WithAllocationTracking(func(bytes int64) {
			tracked += bytes
		}))

		assert.Equal(t, uint64(0), a.Get(0))
		assert.Equal(t, uint64(0), a.Get(2*PageSize-1))
		assert.Equal(t, int64(2*PageSize*8), tracked, "only the materialized zero pages are reported")
	})

	t.Run("SharesBacking", func(t *testing.T) {
		page := make([]int64, PageSize)
		page[5] = 42

		a := FromPages[int64](PageSize, [][]int64{page})
		assert.Equal(t, int64(42), a.Get(5))

		page[5] = 43
		assert.Equal(t, int64(43), a.Get(5), "adoption does not copy")
	})
}

func BenchmarkArrayGet(b *testing.B) {
	for _, size := range []uint64{1 << 16, 1 << 22} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			a := New[uint64](size)
			a.SetAll(func(i uint64) uint64 { return i })

			b.ReportAllocs()
			b.ResetTimer()

			var sink uint64
			for i := 0; i < b.N; i++ {
				sink += a.Get(uint64(i) & (size - 1))
			}
			_ = sink
		})
	}
}
