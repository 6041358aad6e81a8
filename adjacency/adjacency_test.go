package adjacency

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hugego/arena"
)

func codecName(c Compression) string {
	switch c {
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// targetsFor derives a deterministic ascending target list for a node.
func targetsFor(node uint64, degree int, gap int64) []uint64 {
	rng := rand.New(rand.NewSource(int64(node) + 1))
	targets := make([]uint64, degree)
	cur := uint64(0)
	for i := range targets {
		cur += 1 + uint64(rng.Int63n(gap))
		targets[i] = cur
	}
	return targets
}

func TestBuilderRoundTrip(t *testing.T) {
	for _, codec := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(codecName(codec), func(t *testing.T) {
			const nodeCount = 200

			b := NewBuilder(nodeCount, WithCompression(codec))
			app := b.NewAppender()

			// Mixed degrees: empty nodes, tiny lists, and lists past
			// the compression threshold.
			for node := uint64(0); node < nodeCount; node++ {
				degree := int(node) % 97 * 3
				if degree == 0 {
					continue
				}
				app.Append(node, targetsFor(node, degree, 50))
			}

			l := b.Build()
			defer l.Close()

			cursor := l.NewCursor()
			for node := uint64(0); node < nodeCount; node++ {
				degree := int(node) % 97 * 3
				require.Equal(t, degree, l.Degree(node), "node %d", node)

				want := targetsFor(node, degree, 50)
				if degree == 0 {
					assert.Nil(t, l.Targets(node))
					cursor.Init(node)
					assert.Zero(t, cursor.Remaining())
					continue
				}
				require.Equal(t, want, l.Targets(node), "node %d", node)

				cursor.Init(node)
				require.Equal(t, degree, cursor.Remaining())
				for _, w := range want {
					require.Equal(t, w, cursor.Next())
				}
				require.Zero(t, cursor.Remaining())
			}
		})
	}
}

func TestOversizeLists(t *testing.T) {
	for _, codec := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(codecName(codec), func(t *testing.T) {
			// Wide random gaps keep the packed form larger than a
			// storage page even after compression.
			const degree = 500_000
			targets := targetsFor(1, degree, 1<<40)

			b := NewBuilder(4, WithCompression(codec))
			app := b.NewAppender()
			app.Append(1, targets)
			app.Append(2, []uint64{7, 8})

			l := b.Build()
			defer l.Close()

			require.Equal(t, degree, l.Degree(1))
			assert.Equal(t, targets, l.Targets(1))
			assert.Equal(t, []uint64{7, 8}, l.Targets(2), "small list after the oversize one")

			cursor := l.NewCursor()
			cursor.Init(1)
			for i := 0; i < 10; i++ {
				require.Equal(t, targets[i], cursor.Next())
			}
		})
	}
}

func TestConcurrentAppenders(t *testing.T) {
	const (
		workers        = 4
		nodesPerWorker = 500
		nodeCount      = workers * nodesPerWorker
	)

	b := NewBuilder(nodeCount, WithCompression(CompressionLZ4))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			app := b.NewAppender()
			for i := 0; i < nodesPerWorker; i++ {
				node := uint64(w*nodesPerWorker + i)
				app.Append(node, targetsFor(node, 1+int(node)%64, 10))
			}
		}(w)
	}
	wg.Wait()

	l := b.Build()
	defer l.Close()

	for node := uint64(0); node < nodeCount; node++ {
		want := targetsFor(node, 1+int(node)%64, 10)
		require.Equal(t, len(want), l.Degree(node), "node %d", node)
		require.Equal(t, want, l.Targets(node), "node %d", node)
	}
}

func TestOffHeapRoundTrip(t *testing.T) {
	const nodeCount = 100

	b := NewBuilder(nodeCount, WithOffHeapPages())
	app := b.NewAppender()
	for node := uint64(0); node < nodeCount; node++ {
		app.Append(node, targetsFor(node, 32, 100))
	}

	l := b.Build()
	for node := uint64(0); node < nodeCount; node++ {
		require.Equal(t, targetsFor(node, 32, 100), l.Targets(node))
	}

	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "close is idempotent")
}

func TestCompressionSavesPages(t *testing.T) {
	build := func(codec Compression) *List {
		b := NewBuilder(20, WithCompression(codec))
		app := b.NewAppender()
		for node := uint64(0); node < 20; node++ {
			// Consecutive ids: delta encoding plus zstd collapses
			// these to almost nothing.
			app.Append(node, targetsFor(node, 50_000, 1))
		}
		return b.Build()
	}

	plain := build(CompressionNone)
	defer plain.Close()
	compressed := build(CompressionZSTD)
	defer compressed.Close()

	assert.Less(t, compressed.SizeOfBytes(), plain.SizeOfBytes())
}

func TestAllocationTracking(t *testing.T) {
	var tracked int64
	b := NewBuilder(8, WithAllocationTracking(func(bytes int64) {
		tracked += bytes
	}))
	sideArrays := tracked
	assert.Equal(t, int64(8*4+8*8), sideArrays, "degree and offset pages")

	app := b.NewAppender()
	app.Append(0, []uint64{1, 2, 3})
	assert.Equal(t, sideArrays+arena.PageSize, tracked, "first insert claims one storage page")
}

func TestEstimateListBytes(t *testing.T) {
	assert.Equal(t, int64(blockHeaderSize), EstimateListBytes(0))
	assert.Equal(t, int64(blockHeaderSize+100*10), EstimateListBytes(100))
}

func BenchmarkCursorNext(b *testing.B) {
	for _, codec := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		b.Run(codecName(codec), func(b *testing.B) {
			const nodeCount = 1000

			builder := NewBuilder(nodeCount, WithCompression(codec))
			app := builder.NewAppender()
			for node := uint64(0); node < nodeCount; node++ {
				app.Append(node, targetsFor(node, 64, 20))
			}
			l := builder.Build()
			defer l.Close()

			cursor := l.NewCursor()

			b.ReportAllocs()
			b.ResetTimer()

			var sink uint64
			for i := 0; i < b.N; i++ {
				cursor.Init(uint64(i) % nodeCount)
				for cursor.Remaining() > 0 {
					sink += cursor.Next()
				}
			}
			_ = sink
		})
	}
}
