// Package vlong packs sorted uint64 sequences as varint-encoded deltas.
//
// The first value is encoded as-is, every later value as the difference
// to its predecessor. For ascending sequences the deltas stay small, so
// neighbor lists whose ids cluster compress to a few bytes per entry.
// Inputs must be ascending; equal neighbors encode as zero deltas.
package vlong

import "encoding/binary"

// MaxLen is the worst-case encoded size of a single value.
const MaxLen = binary.MaxVarintLen64

// AppendDeltas appends the delta encoding of values to dst and returns
// the extended buffer.
func AppendDeltas(dst []byte, values []uint64) []byte {
	prev := uint64(0)
	for _, v := range values {
		dst = binary.AppendUvarint(dst, v-prev)
		prev = v
	}
	return dst
}

// DecodeDeltas fills out with len(out) values decoded from data and
// returns the number of bytes consumed. It panics on truncated or
// malformed input; encoded blocks are produced by AppendDeltas and are
// trusted once sealed.
func DecodeDeltas(out []uint64, data []byte) int {
	var d Decoder
	d.Init(data)
	for i := range out {
		out[i] = d.Next()
	}
	return d.offset
}

// Decoder streams values out of a delta encoding one at a time without
// allocating. The zero value is empty; Init readies it for a block.
type Decoder struct {
	data   []byte
	offset int
	prev   uint64
}

// Init resets the decoder to the start of data.
func (d *Decoder) Init(data []byte) {
	d.data = data
	d.offset = 0
	d.prev = 0
}

// Next decodes and returns the next value. Calling Next more times than
// the block holds values is undefined; callers track the count.
func (d *Decoder) Next() uint64 {
	delta, n := binary.Uvarint(d.data[d.offset:])
	if n <= 0 {
		panic("vlong: truncated block")
	}
	d.offset += n
	d.prev += delta
	return d.prev
}
