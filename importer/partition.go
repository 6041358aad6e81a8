package importer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Partition is a contiguous id range [Start, Start+Count).
type Partition struct {
	Start uint64
	Count uint64
}

// Partitions splits [0, total) into at most concurrency contiguous
// ranges of near-equal size, spreading the remainder over the leading
// partitions. Empty partitions are not returned.
func Partitions(total uint64, concurrency int) []Partition {
	if total == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	n := uint64(concurrency)
	if n > total {
		n = total
	}
	base := total / n
	remainder := total % n

	parts := make([]Partition, 0, n)
	start := uint64(0)
	for i := uint64(0); i < n; i++ {
		count := base
		if i < remainder {
			count++
		}
		parts = append(parts, Partition{Start: start, Count: count})
		start += count
	}
	return parts
}

// ForEachPartition runs fn over the partitions of [0, total) with the
// given parallelism. The first error cancels the remaining partitions
// and is returned; a canceled ctx stops new partitions from starting.
func ForEachPartition(ctx context.Context, concurrency int, total uint64, fn func(Partition) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for _, p := range Partitions(total, concurrency) {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(p)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
