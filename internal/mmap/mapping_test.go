package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(1 << 20)
	require.NoError(t, err)
	defer m.Close()

	data := m.Bytes()
	require.Len(t, data, 1<<20)
	assert.Equal(t, 1<<20, m.Size())

	// Anonymous memory is zero-filled.
	for _, i := range []int{0, 4095, 1<<20 - 1} {
		assert.Equal(t, byte(0), data[i])
	}

	// Mapped memory is writable.
	data[0] = 0xAB
	data[1<<20-1] = 0xCD
	assert.Equal(t, byte(0xAB), m.Bytes()[0])
	assert.Equal(t, byte(0xCD), m.Bytes()[1<<20-1])
}

func TestMapAnonInvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMappingClose(t *testing.T) {
	m, err := MapAnon(4096)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	// Idempotent.
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
}

func TestMappingAdvise(t *testing.T) {
	m, err := MapAnon(1 << 16)
	require.NoError(t, err)
	defer m.Close()

	for _, pattern := range []AccessPattern{
		AccessDefault, AccessSequential, AccessRandom, AccessWillNeed,
	} {
		assert.NoError(t, m.Advise(pattern))
	}
}
