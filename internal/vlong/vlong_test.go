package vlong

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values []uint64
	}{
		{name: "empty", values: nil},
		{name: "single", values: []uint64{42}},
		{name: "dense run", values: []uint64{1, 2, 3, 4, 5}},
		{name: "zero start", values: []uint64{0, 10, 20}},
		{name: "duplicates", values: []uint64{7, 7, 7, 9}},
		{name: "wide gaps", values: []uint64{3, 1 << 20, 1 << 40, math.MaxUint64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := AppendDeltas(nil, tt.values)

			out := make([]uint64, len(tt.values))
			consumed := DecodeDeltas(out, encoded)
			assert.Equal(t, len(encoded), consumed)
			if len(tt.values) > 0 {
				assert.Equal(t, tt.values, out)
			}
		})
	}
}

func TestAppendExtends(t *testing.T) {
	buf := AppendDeltas(nil, []uint64{1, 2})
	n := len(buf)
	buf = AppendDeltas(buf, []uint64{100})

	out := make([]uint64, 2)
	require.Equal(t, n, DecodeDeltas(out, buf))
	assert.Equal(t, []uint64{1, 2}, out)
}

func TestDecoderStreams(t *testing.T) {
	values := []uint64{5, 6, 100, 10_000}
	encoded := AppendDeltas(nil, values)

	var d Decoder
	d.Init(encoded)
	for _, want := range values {
		require.Equal(t, want, d.Next())
	}

	d.Init(encoded)
	assert.Equal(t, uint64(5), d.Next(), "reinit restarts the block")
}

func TestTruncatedPanics(t *testing.T) {
	encoded := AppendDeltas(nil, []uint64{1 << 40})
	var d Decoder
	d.Init(encoded[:1])
	assert.Panics(t, func() { d.Next() })
}

func TestDenseRunsStayCompact(t *testing.T) {
	values := make([]uint64, 1000)
	for i := range values {
		values[i] = uint64(1_000_000 + i)
	}

	encoded := AppendDeltas(nil, values)
	assert.Less(t, len(encoded), 1100, "consecutive ids cost about a byte each")
}

func BenchmarkAppendDeltas(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	values := make([]uint64, 512)
	for i := range values {
		values[i] = uint64(rng.Int63n(1 << 30))
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	buf := make([]byte, 0, len(values)*MaxLen)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf = AppendDeltas(buf[:0], values)
	}
}

func BenchmarkDecodeDeltas(b *testing.B) {
	values := make([]uint64, 512)
	for i := range values {
		values[i] = uint64(i) * 7
	}
	encoded := AppendDeltas(nil, values)
	out := make([]uint64, len(values))

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		DecodeDeltas(out, encoded)
	}
}
