package sparse

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray(t *testing.T) {
	t.Run("DefaultValue", func(t *testing.T) {
		b := NewBuilder[int64](-1)
		b.Set(10, 100)
		b.Set(PageSize+3, 200)

		a := b.Build()
		assert.Equal(t, int64(100), a.Get(10))
		assert.Equal(t, int64(200), a.Get(PageSize+3))
		assert.Equal(t, int64(-1), a.Get(11), "unset index in a touched page")
		assert.Equal(t, int64(-1), a.Get(10*PageSize), "index beyond the page table")
	})

	t.Run("Contains", func(t *testing.T) {
		b := NewBuilder[uint64](math.MaxUint64)
		b.Set(42, 7)
		b.Set(99, math.MaxUint64)

		a := b.Build()
		assert.True(t, a.Contains(42))
		assert.False(t, a.Contains(43), "unset index in a touched page")
		assert.False(t, a.Contains(99), "storing the default reads back as absent")
		assert.False(t, a.Contains(5*PageSize), "index beyond the page table")
	})

	t.Run("Capacity", func(t *testing.T) {
		b := NewBuilder[int64](0)
		b.Set(3*PageSize+1, 1)

		a := b.Build()
		assert.Equal(t, uint64(4*PageSize), a.Capacity())
		assert.False(t, a.Contains(2*PageSize), "intervening page never materialized")
	})

	t.Run("NaNDefault", func(t *testing.T) {
		// A NaN default poisons Contains for every index in a touched
		// page, because NaN compares unequal to itself.
		b := NewBuilder[float64](math.NaN())
		b.Set(1, 2.5)

		a := b.Build()
		assert.Equal(t, 2.5, a.Get(1))
		assert.True(t, math.IsNaN(a.Get(2)))
		assert.True(t, a.Contains(2), "unset index in a touched page still reads as present")
		assert.False(t, a.Contains(PageSize), "untouched pages are unaffected")
	})
}

func TestBuilder(t *testing.T) {
	t.Run("SetIfAbsent", func(t *testing.T) {
		b := NewBuilder[uint64](math.MaxUint64)

		assert.True(t, b.SetIfAbsent(7, 1))
		assert.False(t, b.SetIfAbsent(7, 2))

		a := b.Build()
		assert.Equal(t, uint64(1), a.Get(7))
	})

	t.Run("AddTo", func(t *testing.T) {
		b := NewBuilder[int64](10)
		b.AddTo(5, 3)
		b.AddTo(5, 4)
		b.AddTo(6, -2)

		a := b.Build()
		assert.Equal(t, int64(17), a.Get(5), "deltas accumulate on top of the default")
		assert.Equal(t, int64(8), a.Get(6))
	})

	t.Run("GrowsPastInitialCapacity", func(t *testing.T) {
		b := NewBuilder[int64](0, WithInitialCapacity(PageSize))
		b.Set(0, 1)
		b.Set(100*PageSize+5, 2)

		a := b.Build()
		assert.Equal(t, int64(1), a.Get(0))
		assert.Equal(t, int64(2), a.Get(100*PageSize+5))
		assert.GreaterOrEqual(t, a.Capacity(), uint64(101*PageSize))
	})

	t.Run("AllocationTracking", func(t *testing.T) {
		var tracked int64
		b := NewBuilder[uint64](0, WithAllocationTracking(func(bytes int64) {
			tracked += bytes
		}))

		b.Set(0, 1)
		b.Set(PageMask, 2)
		assert.Equal(t, int64(PageSize*8), tracked, "both writes land in one page")

		b.Set(PageSize, 3)
		assert.Equal(t, int64(2*PageSize*8), tracked)
	})
}

func TestBuilderConcurrent(t *testing.T) {
	const (
		workers          = 8
		entriesPerWorker = 20_000
	)

	b := NewBuilder[uint64](math.MaxUint64)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			// Strided indexes keep writers on disjoint slots while
			// sharing pages.
			for i := 0; i < entriesPerWorker; i++ {
				index := uint64(i*workers + w)
				b.Set(index*3, index+1)
			}
		}(w)
	}
	wg.Wait()

	a := b.Build()
	for i := uint64(0); i < workers*entriesPerWorker; i++ {
		require.Equal(t, i+1, a.Get(i*3), "index %d", i*3)
	}
	assert.False(t, a.Contains(1), "indexes between the stride stay absent")
	assert.False(t, a.Contains(2))
}

func TestBuildSealsWithoutCopy(t *testing.T) {
	b := NewBuilder[int64](0)
	for i := uint64(0); i < 3*PageSize; i += 17 {
		b.Set(i, int64(i))
	}

	a := b.Build()
	for i := uint64(0); i < 3*PageSize; i += 17 {
		require.Equal(t, int64(i), a.Get(i))
	}
}

func BenchmarkBuilderSet(b *testing.B) {
	for _, pattern := range []string{"sequential", "random"} {
		b.Run(pattern, func(b *testing.B) {
			builder := NewBuilder[uint64](0)
			rng := rand.New(rand.NewSource(42))

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				index := uint64(i)
				if pattern == "random" {
					index = uint64(rng.Intn(1 << 24))
				}
				builder.Set(index, uint64(i))
			}
		})
	}
}

func BenchmarkArrayGet(b *testing.B) {
	for _, size := range []int{1 << 16, 1 << 20} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			builder := NewBuilder[uint64](0)
			for i := 0; i < size; i += 3 {
				builder.Set(uint64(i), uint64(i))
			}
			a := builder.Build()

			b.ReportAllocs()
			b.ResetTimer()

			var sink uint64
			for i := 0; i < b.N; i++ {
				sink += a.Get(uint64(i % size))
			}
			_ = sink
		})
	}
}
