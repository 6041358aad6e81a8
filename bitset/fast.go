package bitset

// Fast is a single-goroutine bitset built for reuse. It keeps a dirty
// list of set bits so Reset costs O(set bits) instead of O(capacity),
// which matters when the same set is cleared between many small rounds.
type Fast struct {
	bits  []uint64
	dirty []uint64
}

// NewFast creates a bitset sized for capacity bits.
func NewFast(capacity int) *Fast {
	return &Fast{
		bits:  make([]uint64, (capacity+63)/64),
		dirty: make([]uint64, 0, 128),
	}
}

// Set sets bit i, growing the set if needed.
func (b *Fast) Set(i uint64) {
	wordIdx := int(i >> 6)
	mask := uint64(1) << (i & 63)

	if wordIdx >= len(b.bits) {
		b.grow(wordIdx + 1)
	}
	if b.bits[wordIdx]&mask == 0 {
		b.bits[wordIdx] |= mask
		b.dirty = append(b.dirty, i)
	}
}

// TestAndSet sets bit i and reports whether it was already set.
func (b *Fast) TestAndSet(i uint64) bool {
	wordIdx := int(i >> 6)
	mask := uint64(1) << (i & 63)

	if wordIdx >= len(b.bits) {
		b.grow(wordIdx + 1)
	}
	if b.bits[wordIdx]&mask != 0 {
		return true
	}
	b.bits[wordIdx] |= mask
	b.dirty = append(b.dirty, i)
	return false
}

// Test reports whether bit i is set.
func (b *Fast) Test(i uint64) bool {
	wordIdx := int(i >> 6)
	if wordIdx >= len(b.bits) {
		return false
	}
	return b.bits[wordIdx]&(uint64(1)<<(i&63)) != 0
}

// Reset clears all set bits via the dirty list.
func (b *Fast) Reset() {
	for _, i := range b.dirty {
		b.bits[i>>6] &^= uint64(1) << (i & 63)
	}
	b.dirty = b.dirty[:0]
}

func (b *Fast) grow(newLen int) {
	newCap := len(b.bits) * 2
	if newCap < newLen {
		newCap = newLen
	}
	next := make([]uint64, newCap)
	copy(next, b.bits)
	b.bits = next
}
