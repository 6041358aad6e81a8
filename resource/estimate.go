package resource

import (
	"unsafe"
)

// SizeOfSlice returns the heap footprint in bytes of a slice of n elements
// of type E, excluding the slice header.
func SizeOfSlice[E any](n int) int64 {
	var zero E
	return int64(n) * int64(unsafe.Sizeof(zero))
}

// SizeOfPages returns the footprint in bytes of pageCount pages of pageSize
// elements of type E, including the page table of slice headers.
func SizeOfPages[E any](pageCount, pageSize int) int64 {
	var page []E
	table := int64(pageCount) * int64(unsafe.Sizeof(page))
	return table + int64(pageCount)*SizeOfSlice[E](pageSize)
}
