package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of page allocations (one cache line).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	// Allocate size + alignment to ensure we can find an aligned offset
	// We need enough space to shift the start pointer up to Alignment-1 bytes
	totalSize := size + Alignment
	buf := make([]byte, totalSize)

	// Calculate the offset to the first aligned byte
	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	// Return the slice starting at the aligned offset
	return buf[offset : offset+uintptr(size)]
}

// AlignedSlice allocates a zeroed slice of n elements of the fixed-size
// primitive type E, starting at a 64-byte aligned address.
func AlignedSlice[E any](n int) []E {
	if n <= 0 {
		return nil
	}

	var zero E
	byteSize := n * int(unsafe.Sizeof(zero))
	byteSlice := AllocAligned(byteSize)

	// Reinterpreting is safe because 64-byte alignment satisfies the
	// alignment requirement of every primitive element type.
	ptr := unsafe.Pointer(&byteSlice[0]) //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*E)(ptr), n)    //nolint:gosec // unsafe is required for memory alignment
}
