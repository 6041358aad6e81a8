package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would push managed
// memory past the configured limit.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits for a bulk import.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxImportWorkers is the maximum number of concurrent import workers.
	// If 0, defaults to 1.
	MaxImportWorkers int64

	// AllocBytesPerSec caps the allocation rate of bulk import stages.
	// If 0, unlimited.
	AllocBytesPerSec int64
}

// Controller manages the resources of an import: a memory budget, import
// worker slots, and an optional allocation throttle.
//
// A nil *Controller is valid and disables all limits.
type Controller struct {
	cfg Config

	// Memory
	memSem    *semaphore.Weighted // nil if unlimited
	reserved  atomic.Int64
	allocated atomic.Int64

	// Concurrency
	workerSem *semaphore.Weighted

	// Allocation throttle
	allocLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxImportWorkers <= 0 {
		cfg.MaxImportWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxImportWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.AllocBytesPerSec > 0 {
		c.allocLimiter = rate.NewLimiter(rate.Limit(cfg.AllocBytesPerSec), int(cfg.AllocBytesPerSec))
	}

	return c
}

// Reserve claims bytes from the memory budget.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) Reserve(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.reserved.Add(bytes)
	return nil
}

// Release returns reserved bytes to the memory budget.
func (c *Controller) Release(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.reserved.Add(-bytes)
}

// TrackAllocation records bytes that builders actually materialized.
// It is the accounting hook handed to page allocators and never blocks;
// negative deltas record released pages.
func (c *Controller) TrackAllocation(bytes int64) {
	if c == nil {
		return
	}
	c.allocated.Add(bytes)
}

// MemoryUsed returns the bytes recorded via TrackAllocation.
func (c *Controller) MemoryUsed() int64 {
	if c == nil {
		return 0
	}
	return c.allocated.Load()
}

// MemoryReserved returns the bytes currently reserved from the budget.
func (c *Controller) MemoryReserved() int64 {
	if c == nil {
		return 0
	}
	return c.reserved.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireWorker reserves an import worker slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workerSem.Acquire(ctx, 1)
}

// TryAcquireWorker reserves an import worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workerSem.TryAcquire(1)
}

// ReleaseWorker releases an import worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workerSem.Release(1)
}

// ThrottleAlloc waits until the allocation throttle admits the given number
// of bytes. Requests larger than one second's budget are admitted in slices.
func (c *Controller) ThrottleAlloc(ctx context.Context, bytes int64) error {
	if c == nil || c.allocLimiter == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	burst := int64(c.allocLimiter.Burst())
	for bytes > 0 {
		n := bytes
		if n > burst {
			n = burst
		}
		if err := c.allocLimiter.WaitN(ctx, int(n)); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
