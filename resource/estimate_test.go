package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeOfSlice(t *testing.T) {
	assert.Equal(t, int64(0), SizeOfSlice[uint64](0))
	assert.Equal(t, int64(8), SizeOfSlice[uint64](1))
	assert.Equal(t, int64(4096*8), SizeOfSlice[uint64](4096))
	assert.Equal(t, int64(4096), SizeOfSlice[byte](4096))
	assert.Equal(t, int64(4096*4), SizeOfSlice[float32](4096))
}

func TestSizeOfPages(t *testing.T) {
	// 10 pages of 4096 uint64s plus 10 slice headers.
	want := int64(10*24) + int64(10*4096*8)
	assert.Equal(t, want, SizeOfPages[uint64](10, 4096))

	assert.Equal(t, int64(0), SizeOfPages[uint64](0, 4096))
}
