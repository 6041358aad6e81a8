// Package pageutil provides the page arithmetic shared by all paged
// containers: splitting a 63-bit element index into a page index and an
// offset within that page.
package pageutil

// PageIndex returns the index of the page that holds the given element index.
func PageIndex(index uint64, pageShift uint) int {
	return int(index >> pageShift)
}

// IndexInPage returns the offset of the given element index within its page.
func IndexInPage(index uint64, pageMask uint64) int {
	return int(index & pageMask)
}

// CapacityFor returns the total element capacity of numPages pages.
// It is also the start address of page numPages, which keeps capacity
// math and address math interchangeable.
func CapacityFor(numPages int, pageShift uint) uint64 {
	return uint64(numPages) << pageShift
}

// NumPagesFor returns the number of pages required to hold capacity elements.
func NumPagesFor(capacity uint64, pageShift uint, pageMask uint64) int {
	return int((capacity + pageMask) >> pageShift)
}

// ExclusiveIndexOfPage returns the exclusive upper bound within the last
// page for the given element count. The count must be positive.
func ExclusiveIndexOfPage(count uint64, pageMask uint64) int {
	return 1 + int((count-1)&pageMask)
}

// Oversize returns a page-table length with headroom beyond minSize.
// The current length grows by half, but never to less than minSize.
func Oversize(currentLen, minSize int) int {
	newLen := currentLen + currentLen>>1
	if newLen < minSize {
		newLen = minSize
	}
	return newLen
}
