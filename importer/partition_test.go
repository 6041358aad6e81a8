package importer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hugego/bitset"
)

func checkContiguous(t *testing.T, parts []Partition, total uint64) {
	t.Helper()

	next := uint64(0)
	for _, p := range parts {
		require.Equal(t, next, p.Start)
		require.NotZero(t, p.Count)
		next += p.Count
	}
	require.Equal(t, total, next)
}

func TestPartitions(t *testing.T) {
	t.Run("EvenSplit", func(t *testing.T) {
		parts := Partitions(100, 4)
		require.Len(t, parts, 4)
		for _, p := range parts {
			assert.Equal(t, uint64(25), p.Count)
		}
		checkContiguous(t, parts, 100)
	})

	t.Run("RemainderSpreadOverLeading", func(t *testing.T) {
		parts := Partitions(10, 3)
		require.Len(t, parts, 3)
		assert.Equal(t, []Partition{{0, 4}, {4, 3}, {7, 3}}, parts)
	})

	t.Run("FewerIdsThanWorkers", func(t *testing.T) {
		parts := Partitions(2, 8)
		require.Len(t, parts, 2)
		checkContiguous(t, parts, 2)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, Partitions(0, 4))
	})

	t.Run("ZeroConcurrency", func(t *testing.T) {
		parts := Partitions(5, 0)
		require.Len(t, parts, 1)
		assert.Equal(t, Partition{0, 5}, parts[0])
	})
}

func TestForEachPartition(t *testing.T) {
	t.Run("CoversEveryIdOnce", func(t *testing.T) {
		const total = 10_000

		seen := bitset.NewAtomic(total)
		var count atomic.Uint64
		err := ForEachPartition(context.Background(), 4, total, func(p Partition) error {
			for i := p.Start; i < p.Start+p.Count; i++ {
				if seen.TestAndSet(i) {
					t.Errorf("id %d visited twice", i)
				}
				count.Add(1)
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, uint64(total), count.Load())
	})

	t.Run("FirstErrorWins", func(t *testing.T) {
		sentinel := errors.New("bad partition")

		err := ForEachPartition(context.Background(), 2, 100, func(p Partition) error {
			if p.Start == 0 {
				return sentinel
			}
			return nil
		})
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran atomic.Bool
		err := ForEachPartition(ctx, 4, 100, func(Partition) error {
			ran.Store(true)
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ran.Load())
	})

	t.Run("EmptyRange", func(t *testing.T) {
		err := ForEachPartition(context.Background(), 4, 0, func(Partition) error {
			t.Error("no partitions expected")
			return nil
		})
		assert.NoError(t, err)
	})
}
