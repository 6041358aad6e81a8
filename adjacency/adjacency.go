package adjacency

import (
	"github.com/hupe1980/hugego/arena"
	"github.com/hupe1980/hugego/dense"
	"github.com/hupe1980/hugego/internal/conv"
	"github.com/hupe1980/hugego/internal/vlong"
)

// Option configures a Builder.
type Option func(*options)

type options struct {
	codec      Compression
	offHeap    bool
	trackAlloc func(int64)
}

// WithCompression selects the block codec for packed target lists. The
// default is CompressionNone.
func WithCompression(codec Compression) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithOffHeapPages backs the list storage with anonymous memory mappings
// instead of heap pages.
func WithOffHeapPages() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithAllocationTracking registers fn to be called with the byte size of
// every page the builder's storage takes ownership of.
func WithAllocationTracking(fn func(int64)) Option {
	return func(o *options) {
		o.trackAlloc = fn
	}
}

// Builder packs per-node target lists into paged storage. Nodes are ids
// in the remapped space 0..nodeCount-1; each node is appended at most
// once. Appending happens through per-worker Appenders; Build seals the
// result into a List.
type Builder struct {
	arena     *arena.Arena[byte]
	degrees   *dense.Array[uint32]
	offsets   *dense.Array[uint64]
	codec     Compression
	nodeCount uint64
}

// NewBuilder creates a builder for a graph with the given node count.
func NewBuilder(nodeCount uint64, opts ...Option) *Builder {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var arenaOpts []arena.Option
	if o.offHeap {
		arenaOpts = append(arenaOpts, arena.WithOffHeapPages())
	}
	if o.trackAlloc != nil {
		arenaOpts = append(arenaOpts, arena.WithAllocationTracking(o.trackAlloc))
	}

	var denseOpts []dense.Option
	if o.trackAlloc != nil {
		denseOpts = append(denseOpts, dense.WithAllocationTracking(o.trackAlloc))
	}

	return &Builder{
		arena:     arena.New[byte](arenaOpts...),
		degrees:   dense.New[uint32](nodeCount, denseOpts...),
		offsets:   dense.New[uint64](nodeCount, denseOpts...),
		codec:     o.codec,
		nodeCount: nodeCount,
	}
}

// NewAppender returns an appender bound to this builder. Each concurrent
// worker needs its own; a single appender must not be shared.
func (b *Builder) NewAppender() *Appender {
	return &Appender{
		b:     b,
		alloc: b.arena.NewLocalAllocator(),
	}
}

// Build seals the appended lists into a List. The builder and its
// appenders must not be used afterwards.
func (b *Builder) Build() *List {
	return &List{
		arena:   b.arena,
		pages:   b.arena.Pages(),
		degrees: b.degrees,
		offsets: b.offsets,
		codec:   b.codec,
	}
}

// Appender packs target lists for one import worker.
type Appender struct {
	b      *Builder
	alloc  *arena.LocalAllocator[byte]
	packed []byte
	block  []byte
}

// Append packs the targets of node and records its degree. Targets must
// be ascending (the import pipeline sorts); nodes with no targets need
// no call. Workers must append disjoint nodes.
func (a *Appender) Append(node uint64, targets []uint64) {
	if len(targets) == 0 {
		return
	}

	a.packed = vlong.AppendDeltas(a.packed[:0], targets)
	block := encodeBlock(a.block, a.packed, a.b.codec)

	addr := a.alloc.Insert(block)

	// Oversize inserts hand the buffer over to the storage; drop our
	// reference so the next append starts fresh.
	if len(block) > arena.PageSize {
		a.packed = nil
		a.block = nil
	} else if a.b.codec != CompressionNone {
		a.block = block
	}

	degree, err := conv.IntToUint32(len(targets))
	if err != nil {
		panic(err)
	}
	a.b.degrees.Set(node, degree)
	a.b.offsets.Set(node, uint64(addr))
}

// EstimateListBytes returns the worst-case storage for one list of the
// given degree, header included. Actual usage is usually far below for
// clustered ids.
func EstimateListBytes(degree int) int64 {
	return blockHeaderSize + int64(degree)*vlong.MaxLen
}
