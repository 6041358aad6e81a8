package bitset

import (
	"math/bits"
	"sync/atomic"
)

const (
	// segmentShift determines the size of each segment.
	// 16 bits = 65536 bits per segment.
	segmentShift = 16
	segmentBits  = 1 << segmentShift
	segmentMask  = segmentBits - 1

	// wordsPerSegment is the number of uint64 words in a segment.
	wordsPerSegment = segmentBits / 64
)

// segment is a fixed-size block of atomically accessed words.
type segment [wordsPerSegment]atomic.Uint64

// Atomic is a lock-free segmented bitset safe for concurrent use. It
// grows on demand: setting a bit beyond the current length extends the
// set, so writers never need to agree on a capacity up front.
type Atomic struct {
	segments atomic.Pointer[[]*segment]
	size     atomic.Uint64
}

// NewAtomic creates a bitset pre-sized for the given number of bits.
func NewAtomic(size uint64) *Atomic {
	b := &Atomic{}
	b.size.Store(size)
	b.growSegments(size)
	return b
}

// word returns the atomic word holding bit i together with the mask that
// selects it. The second return is nil when i lies beyond the allocated
// segments.
func (b *Atomic) word(i uint64) (*atomic.Uint64, uint64) {
	segments := b.segments.Load()
	segIdx := int(i >> segmentShift)
	if segments == nil || segIdx >= len(*segments) {
		return nil, 0
	}
	seg := (*segments)[segIdx]
	if seg == nil {
		return nil, 0
	}

	offset := i & segmentMask
	return &seg[offset/64], uint64(1) << (offset % 64)
}

// Set sets bit i, growing the set if needed.
func (b *Atomic) Set(i uint64) {
	if i >= b.size.Load() {
		b.Grow(i + 1)
	}
	if w, mask := b.word(i); w != nil {
		w.Or(mask)
	}
}

// Unset clears bit i. Bits beyond the current length are already clear.
func (b *Atomic) Unset(i uint64) {
	if i >= b.size.Load() {
		return
	}
	if w, mask := b.word(i); w != nil {
		w.And(^mask)
	}
}

// Test reports whether bit i is set.
func (b *Atomic) Test(i uint64) bool {
	if i >= b.size.Load() {
		return false
	}
	w, mask := b.word(i)
	return w != nil && w.Load()&mask != 0
}

// TestAndSet sets bit i and reports whether it was already set. When
// several goroutines race on the same bit, exactly one of them observes
// false. The set grows on demand like Set.
func (b *Atomic) TestAndSet(i uint64) bool {
	if i >= b.size.Load() {
		b.Grow(i + 1)
	}
	w, mask := b.word(i)
	if w == nil {
		return false
	}

	// Optimistic read before taking the CAS path.
	if w.Load()&mask != 0 {
		return true
	}
	for {
		old := w.Load()
		if old&mask != 0 {
			return true
		}
		if w.CompareAndSwap(old, old|mask) {
			return false
		}
	}
}

// NextSetBit returns the index of the first set bit at or after i, or
// -1 when no later bit is set.
func (b *Atomic) NextSetBit(i uint64) int64 {
	if i >= b.size.Load() {
		return -1
	}
	segments := b.segments.Load()
	if segments == nil {
		return -1
	}

	segIdx := int(i >> segmentShift)
	if segIdx >= len(*segments) {
		return -1
	}
	offset := i & segmentMask
	wordIdx := int(offset / 64)

	for s := segIdx; s < len(*segments); s++ {
		seg := (*segments)[s]
		if seg == nil {
			wordIdx = 0
			continue
		}
		for w := wordIdx; w < wordsPerSegment; w++ {
			val := seg[w].Load()
			if s == segIdx && w == int(offset/64) {
				val &= ^(uint64(1)<<(offset%64) - 1)
			}
			if val != 0 {
				return int64(uint64(s)*segmentBits + uint64(w)*64 + uint64(bits.TrailingZeros64(val)))
			}
		}
		wordIdx = 0
	}
	return -1
}

// ClearAll clears every bit without shrinking the set.
func (b *Atomic) ClearAll() {
	segments := b.segments.Load()
	if segments == nil {
		return
	}
	for _, seg := range *segments {
		if seg == nil {
			continue
		}
		for i := range seg {
			seg[i].Store(0)
		}
	}
}

// Count returns the number of set bits.
func (b *Atomic) Count() int {
	segments := b.segments.Load()
	if segments == nil {
		return 0
	}

	count := 0
	for _, seg := range *segments {
		if seg == nil {
			continue
		}
		for i := range seg {
			if val := seg[i].Load(); val != 0 {
				count += bits.OnesCount64(val)
			}
		}
	}
	return count
}

// Len returns the size of the bitset in bits.
func (b *Atomic) Len() uint64 {
	return b.size.Load()
}

// Grow ensures the bitset can hold at least size bits.
func (b *Atomic) Grow(size uint64) {
	b.growSegments(size)
	for {
		cur := b.size.Load()
		if size <= cur {
			return
		}
		if b.size.CompareAndSwap(cur, size) {
			return
		}
	}
}

// growSegments ensures enough segments exist for the given size. Safe
// for concurrent callers; losers of the CAS retry against the winner's
// table, so no installed segment is ever dropped.
func (b *Atomic) growSegments(size uint64) {
	if size == 0 {
		return
	}
	targetIdx := int((size - 1) >> segmentShift)

	segments := b.segments.Load()
	if segments != nil && targetIdx < len(*segments) {
		return
	}

	for {
		old := b.segments.Load()
		currentLen := 0
		if old != nil {
			currentLen = len(*old)
		}
		if targetIdx < currentLen {
			return
		}

		next := make([]*segment, targetIdx+1)
		if old != nil {
			copy(next, *old)
		}
		for i := currentLen; i < len(next); i++ {
			next[i] = new(segment)
		}

		if b.segments.CompareAndSwap(old, &next) {
			return
		}
	}
}
