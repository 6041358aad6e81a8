package importer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hugego/bitset"
	"github.com/hupe1980/hugego/dense"
	"github.com/hupe1980/hugego/internal/pageutil"
	"github.com/hupe1980/hugego/sparse"
)

// NotFound is returned by IDMap.ToMapped for original ids that were
// never recorded. It doubles as the forward table's default value, so
// original ids must stay below it; the topmost id is reserved.
const NotFound = ^uint64(0)

// MapOption configures an IDMapBuilder.
type MapOption func(*mapOptions)

type mapOptions struct {
	dedupe     bool
	dedupeCap  uint64
	trackAlloc func(int64)
}

// WithDeduplication adds a shared concurrent bitset over original ids so
// workers can cheaply detect records seen by any worker, not just their
// own. capacity pre-sizes the bitset for the expected id space; it grows
// past it on demand.
func WithDeduplication(capacity uint64) MapOption {
	return func(o *mapOptions) {
		o.dedupe = true
		o.dedupeCap = capacity
	}
}

// WithMapAllocationTracking registers fn with every page allocation the
// id map makes while building its lookup tables.
func WithMapAllocationTracking(fn func(int64)) MapOption {
	return func(o *mapOptions) {
		o.trackAlloc = fn
	}
}

// IDMapBuilder collects original node ids from concurrent import
// workers and assigns them dense mapped ids on Build. Each worker
// records into its own WorkerSet; the sets are merged when building, so
// recording is coordination-free.
type IDMapBuilder struct {
	opts mapOptions
	seen *bitset.Atomic

	mu         sync.Mutex
	workers    []*WorkerSet
	duplicates atomic.Uint64
}

// NewIDMapBuilder creates an empty builder.
func NewIDMapBuilder(opts ...MapOption) *IDMapBuilder {
	o := mapOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	b := &IDMapBuilder{opts: o}
	if o.dedupe {
		b.seen = bitset.NewAtomic(o.dedupeCap)
	}
	return b
}

// NewWorkerSet registers and returns a set for one import worker. Each
// concurrent goroutine records through its own set.
func (b *IDMapBuilder) NewWorkerSet() *WorkerSet {
	w := &WorkerSet{b: b, ids: roaring64.New()}

	b.mu.Lock()
	b.workers = append(b.workers, w)
	b.mu.Unlock()
	return w
}

// Duplicates returns how many recorded ids had already been seen by
// some worker. Only meaningful with WithDeduplication; without it,
// cross-worker duplicates are folded silently during the merge.
func (b *IDMapBuilder) Duplicates() uint64 {
	return b.duplicates.Load()
}

// WorkerSet accumulates the original ids seen by one worker.
type WorkerSet struct {
	b   *IDMapBuilder
	ids *roaring64.Bitmap
}

// RecordSeen adds an original id and reports whether it was new. With
// deduplication enabled the answer spans all workers; otherwise it only
// reflects this worker's history.
func (w *WorkerSet) RecordSeen(originalID uint64) bool {
	if w.b.seen != nil {
		if w.b.seen.TestAndSet(originalID) {
			w.b.duplicates.Add(1)
			return false
		}
		w.ids.Add(originalID)
		return true
	}

	if !w.ids.CheckedAdd(originalID) {
		w.b.duplicates.Add(1)
		return false
	}
	return true
}

// Build merges the worker sets and assigns each distinct original id
// its rank in ascending order as the mapped id. The reverse lookup is
// materialized by draining the rank-keyed staging array into a dense
// table with the given parallelism.
func (b *IDMapBuilder) Build(ctx context.Context, concurrency int) (*IDMap, error) {
	b.mu.Lock()
	workers := b.workers
	b.mu.Unlock()

	merged := roaring64.New()
	for _, w := range workers {
		merged.Or(w.ids)
	}
	nodeCount := merged.GetCardinality()

	var idSpace uint64
	if nodeCount > 0 {
		idSpace = merged.Maximum() + 1
	}

	forwardOpts := []sparse.BuilderOption{sparse.WithInitialCapacity(idSpace)}
	stagingOpts := []sparse.BuilderOption{sparse.WithInitialCapacity(nodeCount)}
	if b.opts.trackAlloc != nil {
		forwardOpts = append(forwardOpts, sparse.WithAllocationTracking(b.opts.trackAlloc))
		stagingOpts = append(stagingOpts, sparse.WithAllocationTracking(b.opts.trackAlloc))
	}

	forward := sparse.NewBuilder[uint64](NotFound, forwardOpts...)
	staging := sparse.NewBuilder[uint64](0, stagingOpts...)

	rank := uint64(0)
	it := merged.Iterator()
	for it.HasNext() {
		original := it.Next()
		forward.Set(original, rank)
		staging.Set(rank, original)
		rank++
	}

	reverse, err := drainIntoDense(ctx, concurrency, nodeCount, staging.Build(), b.opts.trackAlloc)
	if err != nil {
		return nil, err
	}

	return &IDMap{
		forward:   forward.Build(),
		reverse:   reverse,
		nodeCount: nodeCount,
	}, nil
}

// drainIntoDense moves the pages of a rank-keyed sparse array into a
// dense array of the same geometry without copying element data. The
// workers claim pages through the draining iterator, so they need no
// range coordination.
func drainIntoDense(ctx context.Context, concurrency int, nodeCount uint64, staged *sparse.Array[uint64], trackAlloc func(int64)) (*dense.Array[uint64], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages := make([][]uint64, pageutil.NumPagesFor(nodeCount, dense.PageShift, dense.PageMask))

	drain := staged.DrainingIterator()
	var g errgroup.Group
	for i := 0; i < max(concurrency, 1); i++ {
		g.Go(func() error {
			batch := drain.NewBatch()
			for drain.Next(batch) {
				pages[batch.Offset>>dense.PageShift] = batch.Page
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var denseOpts []dense.Option
	if trackAlloc != nil {
		denseOpts = append(denseOpts, dense.WithAllocationTracking(trackAlloc))
	}
	return dense.FromPages(nodeCount, pages, denseOpts...), nil
}

// IDMap is the sealed two-way mapping between original and mapped ids.
// Mapped ids are dense: 0..NodeCount()-1 in ascending original order.
// Safe for unsynchronized concurrent reads.
type IDMap struct {
	forward   *sparse.Array[uint64]
	reverse   *dense.Array[uint64]
	nodeCount uint64
}

// ToMapped returns the mapped id of an original id. The second return
// is false when the id was never recorded.
func (m *IDMap) ToMapped(original uint64) (uint64, bool) {
	mapped := m.forward.Get(original)
	return mapped, mapped != NotFound
}

// ToOriginal returns the original id of a mapped id. Mapped ids come
// from this map, so the input must be below NodeCount.
func (m *IDMap) ToOriginal(mapped uint64) uint64 {
	return m.reverse.Get(mapped)
}

// NodeCount returns the number of distinct recorded ids.
func (m *IDMap) NodeCount() uint64 {
	return m.nodeCount
}
