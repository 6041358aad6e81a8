package adjacency

import (
	"github.com/hupe1980/hugego/arena"
	"github.com/hupe1980/hugego/dense"
	"github.com/hupe1980/hugego/internal/vlong"
)

// List is the sealed adjacency storage: per-node target lists packed
// into pages, with degrees and list addresses in dense side arrays.
// All read methods are safe for unsynchronized concurrent use, except
// that a Cursor belongs to one goroutine.
type List struct {
	arena   *arena.Arena[byte]
	pages   [][]byte
	degrees *dense.Array[uint32]
	offsets *dense.Array[uint64]
	codec   Compression
}

// Degree returns the number of targets of node.
func (l *List) Degree(node uint64) int {
	return int(l.degrees.Get(node))
}

// Targets returns a freshly decoded copy of the targets of node, in
// ascending order. Nodes without targets return nil. For repeated
// allocation-free traversal use a Cursor instead.
func (l *List) Targets(node uint64) []uint64 {
	degree := l.Degree(node)
	if degree == 0 {
		return nil
	}

	packed, _ := decodeBlock(nil, l.block(node), l.codec)
	out := make([]uint64, degree)
	vlong.DecodeDeltas(out, packed)
	return out
}

// SizeOfBytes returns the memory held by the packed lists and the two
// side arrays.
func (l *List) SizeOfBytes() int64 {
	return int64(l.arena.Capacity()) + l.degrees.SizeOfBytes() + l.offsets.SizeOfBytes()
}

// Close releases the backing storage. The list must not be read
// afterwards. Close is idempotent.
func (l *List) Close() error {
	return l.arena.Close()
}

// block returns the raw bytes of node's list, from its address to the
// end of the page that holds it. Decoding knows where to stop.
func (l *List) block(node uint64) []byte {
	addr := arena.Address(l.offsets.Get(node))
	return l.pages[addr.PageIndex()][addr.IndexInPage():]
}

// NewCursor returns a reusable cursor over this list's targets. Cursors
// are not safe for concurrent use; each goroutine takes its own.
func (l *List) NewCursor() *Cursor {
	return &Cursor{l: l}
}

// Cursor streams one node's targets without allocating, amortizing its
// decode scratch across Init calls.
type Cursor struct {
	l         *List
	dec       vlong.Decoder
	remaining int
	scratch   []byte
}

// Init positions the cursor at the start of node's target list.
func (c *Cursor) Init(node uint64) {
	c.remaining = c.l.Degree(node)
	if c.remaining == 0 {
		c.dec.Init(nil)
		return
	}

	packed, scratch := decodeBlock(c.scratch, c.l.block(node), c.l.codec)
	c.scratch = scratch
	c.dec.Init(packed)
}

// Remaining returns how many targets are left to consume.
func (c *Cursor) Remaining() int {
	return c.remaining
}

// Next returns the next target. Calling Next with nothing remaining is
// undefined; check Remaining first.
func (c *Cursor) Next() uint64 {
	c.remaining--
	return c.dec.Next()
}
