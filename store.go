package hugego

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/hugego/adjacency"
	"github.com/hupe1980/hugego/importer"
	"github.com/hupe1980/hugego/resource"
	"github.com/hupe1980/hugego/sparse"
)

// StoreBuilder assembles a Store in two phases. Phase one records original
// node ids through per-goroutine worker sets; BuildIDMap seals them into the
// id map. Phase two appends adjacency lists (keyed by mapped id) and sets
// properties (keyed by original id); Build seals everything into a Store.
//
// All builders hand their allocations to a single resource.Controller, so
// memory limits and throttling apply to the import as a whole.
type StoreBuilder struct {
	opts       options
	logger     *Logger
	metrics    MetricsCollector
	controller *resource.Controller

	idMapBuilder *importer.IDMapBuilder
	idMap        *importer.IDMap
	topology     *adjacency.Builder

	mu               sync.Mutex
	longProps        map[string]*importer.PropertyBuilder[int64]
	doubleProps      map[string]*importer.PropertyBuilder[float64]
	longArrayProps   map[string]*importer.SlicePropertyBuilder[int64]
	doubleArrayProps map[string]*importer.SlicePropertyBuilder[float64]

	overBudget    atomic.Bool
	lastThrottled int64
	built         atomic.Bool
}

// NewStoreBuilder creates a StoreBuilder with all import surfaces wired to
// one resource controller and one logger.
func NewStoreBuilder(optFns ...Option) *StoreBuilder {
	o := applyOptions(optFns)

	sb := &StoreBuilder{
		opts:             o,
		logger:           o.logger,
		metrics:          o.metricsCollector,
		longProps:        make(map[string]*importer.PropertyBuilder[int64]),
		doubleProps:      make(map[string]*importer.PropertyBuilder[float64]),
		longArrayProps:   make(map[string]*importer.SlicePropertyBuilder[int64]),
		doubleArrayProps: make(map[string]*importer.SlicePropertyBuilder[float64]),
	}
	if sb.metrics == nil {
		sb.metrics = NoopMetricsCollector{}
	}
	if sb.logger == nil {
		sb.logger = NoopLogger()
	}

	sb.controller = resource.NewController(resource.Config{
		MemoryLimitBytes: o.memoryLimit,
		MaxImportWorkers: int64(o.concurrency),
		AllocBytesPerSec: o.allocBytesPerSec,
	})

	mapOpts := []importer.MapOption{importer.WithMapAllocationTracking(sb.trackAlloc)}
	if o.dedupe {
		mapOpts = append(mapOpts, importer.WithDeduplication(o.dedupeCapacity))
	}
	sb.idMapBuilder = importer.NewIDMapBuilder(mapOpts...)

	return sb
}

// trackAlloc is the accounting hook handed to every builder. Positive deltas
// claim budget; a failed claim marks the import over budget, surfaced as
// resource.ErrMemoryLimitExceeded at the next phase boundary.
func (sb *StoreBuilder) trackAlloc(delta int64) {
	c := sb.controller
	c.TrackAllocation(delta)

	if c.MemoryLimit() == 0 || sb.overBudget.Load() {
		return
	}
	if delta > 0 {
		if err := c.Reserve(delta); err != nil {
			sb.overBudget.Store(true)
		}
	} else if delta < 0 {
		c.Release(-delta)
	}
}

// throttle charges the allocation throttle with whatever the import
// materialized since the last phase boundary.
func (sb *StoreBuilder) throttle(ctx context.Context) error {
	used := sb.controller.MemoryUsed()
	delta := used - sb.lastThrottled
	sb.lastThrottled = used
	if delta <= 0 {
		return nil
	}
	return sb.controller.ThrottleAlloc(ctx, delta)
}

// NewWorkerSet returns a recording surface for one import goroutine.
// Call before BuildIDMap; each goroutine gets its own set.
func (sb *StoreBuilder) NewWorkerSet() *importer.WorkerSet {
	return sb.idMapBuilder.NewWorkerSet()
}

// Duplicates returns the number of duplicate recordings observed so far.
// Cross-worker duplicates are only counted with WithIDDeduplication.
func (sb *StoreBuilder) Duplicates() uint64 {
	return sb.idMapBuilder.Duplicates()
}

// AcquireWorker reserves one of the configured import worker slots.
// Callers that drive recording or appending from their own goroutines can
// gate them here to share the WithConcurrency bound. Blocks when all slots
// are busy.
func (sb *StoreBuilder) AcquireWorker(ctx context.Context) error {
	return sb.controller.AcquireWorker(ctx)
}

// TryAcquireWorker reserves an import worker slot without blocking.
func (sb *StoreBuilder) TryAcquireWorker() bool {
	return sb.controller.TryAcquireWorker()
}

// ReleaseWorker returns a slot taken with AcquireWorker.
func (sb *StoreBuilder) ReleaseWorker() {
	sb.controller.ReleaseWorker()
}

// BuildIDMap merges the recorded worker sets into the id map and opens the
// adjacency surface. It must complete before NewAppender or Build.
func (sb *StoreBuilder) BuildIDMap(ctx context.Context) error {
	if sb.idMap != nil {
		return ErrAlreadyBuilt
	}

	sb.logger.LogBuildStart(ctx, sb.opts.concurrency)
	start := time.Now()

	m, err := sb.idMapBuilder.Build(ctx, sb.opts.concurrency)
	if err == nil && sb.overBudget.Load() {
		err = resource.ErrMemoryLimitExceeded
	}
	if err == nil {
		err = sb.throttle(ctx)
	}

	var nodeCount uint64
	if m != nil {
		nodeCount = m.NodeCount()
	}
	sb.metrics.RecordIDMapBuild(nodeCount, time.Since(start), err)
	sb.logger.LogIDMapBuilt(ctx, nodeCount, sb.idMapBuilder.Duplicates(), err)
	if err != nil {
		return buildError("id map", err)
	}

	adjOpts := []adjacency.Option{
		adjacency.WithCompression(sb.opts.compression),
		adjacency.WithAllocationTracking(sb.trackAlloc),
	}
	if sb.opts.offHeapAdjacency {
		adjOpts = append(adjOpts, adjacency.WithOffHeapPages())
	}

	sb.idMap = m
	sb.topology = adjacency.NewBuilder(nodeCount, adjOpts...)

	return nil
}

// IDMap returns the sealed id map, or ErrIDMapNotBuilt before BuildIDMap.
func (sb *StoreBuilder) IDMap() (*importer.IDMap, error) {
	if sb.idMap == nil {
		return nil, ErrIDMapNotBuilt
	}
	return sb.idMap, nil
}

// NewAppender returns an adjacency appender for one import goroutine.
// Appends are keyed by mapped node id, so the id map must be built first.
func (sb *StoreBuilder) NewAppender() (*adjacency.Appender, error) {
	if sb.idMap == nil {
		return nil, ErrIDMapNotBuilt
	}
	return sb.topology.NewAppender(), nil
}

// LongProperties returns the builder for a named int64 column, creating it
// on first use. Values are keyed by original id and may be set before or
// after BuildIDMap.
func (sb *StoreBuilder) LongProperties(name string, defaultValue int64) *importer.PropertyBuilder[int64] {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if p, ok := sb.longProps[name]; ok {
		return p
	}
	p := importer.NewLongProperties(defaultValue, sparse.WithAllocationTracking(sb.trackAlloc))
	sb.longProps[name] = p
	return p
}

// DoubleProperties returns the builder for a named float64 column, creating
// it on first use.
func (sb *StoreBuilder) DoubleProperties(name string, defaultValue float64) *importer.PropertyBuilder[float64] {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if p, ok := sb.doubleProps[name]; ok {
		return p
	}
	p := importer.NewDoubleProperties(defaultValue, sparse.WithAllocationTracking(sb.trackAlloc))
	sb.doubleProps[name] = p
	return p
}

// LongArrayProperties returns the builder for a named []int64 column,
// creating it on first use.
func (sb *StoreBuilder) LongArrayProperties(name string, defaultValue []int64) *importer.SlicePropertyBuilder[int64] {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if p, ok := sb.longArrayProps[name]; ok {
		return p
	}
	p := importer.NewLongArrayProperties(defaultValue, sparse.WithAllocationTracking(sb.trackAlloc))
	sb.longArrayProps[name] = p
	return p
}

// DoubleArrayProperties returns the builder for a named []float64 column,
// creating it on first use.
func (sb *StoreBuilder) DoubleArrayProperties(name string, defaultValue []float64) *importer.SlicePropertyBuilder[float64] {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if p, ok := sb.doubleArrayProps[name]; ok {
		return p
	}
	p := importer.NewDoubleArrayProperties(defaultValue, sparse.WithAllocationTracking(sb.trackAlloc))
	sb.doubleArrayProps[name] = p
	return p
}

// Build seals the adjacency lists and remaps every property column onto
// mapped ids. After Build the StoreBuilder is spent; further appends or sets
// are not allowed.
func (sb *StoreBuilder) Build(ctx context.Context) (*Store, error) {
	if sb.idMap == nil {
		return nil, ErrIDMapNotBuilt
	}
	if sb.built.Swap(true) {
		return nil, ErrAlreadyBuilt
	}

	start := time.Now()
	list := sb.topology.Build()

	st := &Store{
		idMap:            sb.idMap,
		topology:         list,
		longProps:        make(map[string]*sparse.Array[int64], len(sb.longProps)),
		doubleProps:      make(map[string]*sparse.Array[float64], len(sb.doubleProps)),
		longArrayProps:   make(map[string]*sparse.SliceArray[int64], len(sb.longArrayProps)),
		doubleArrayProps: make(map[string]*sparse.SliceArray[float64], len(sb.doubleArrayProps)),
		controller:       sb.controller,
		logger:           sb.logger,
	}

	fail := func(phase string, err error) (*Store, error) {
		_ = list.Close()
		sb.controller.Release(sb.controller.MemoryReserved())
		sb.metrics.RecordBuild(time.Since(start), err)
		sb.logger.LogBuildComplete(ctx, sb.idMap.NodeCount(), sb.controller.MemoryUsed(), err)
		return nil, buildError(phase, err)
	}

	if err := sb.throttle(ctx); err != nil {
		return fail("adjacency", err)
	}

	for name, pb := range sb.longProps {
		pstart := time.Now()
		arr, stats, err := pb.Build(ctx, sb.idMap, sb.opts.concurrency)
		sb.metrics.RecordPropertyBuild(name, stats.Imported, time.Since(pstart), err)
		sb.logger.LogPropertyBuilt(ctx, name, stats.Imported, err)
		if err != nil {
			return fail("property "+name, err)
		}
		st.longProps[name] = arr
		if err := sb.throttle(ctx); err != nil {
			return fail("property "+name, err)
		}
	}
	for name, pb := range sb.doubleProps {
		pstart := time.Now()
		arr, stats, err := pb.Build(ctx, sb.idMap, sb.opts.concurrency)
		sb.metrics.RecordPropertyBuild(name, stats.Imported, time.Since(pstart), err)
		sb.logger.LogPropertyBuilt(ctx, name, stats.Imported, err)
		if err != nil {
			return fail("property "+name, err)
		}
		st.doubleProps[name] = arr
		if err := sb.throttle(ctx); err != nil {
			return fail("property "+name, err)
		}
	}
	for name, pb := range sb.longArrayProps {
		pstart := time.Now()
		arr, stats, err := pb.Build(ctx, sb.idMap, sb.opts.concurrency)
		sb.metrics.RecordPropertyBuild(name, stats.Imported, time.Since(pstart), err)
		sb.logger.LogPropertyBuilt(ctx, name, stats.Imported, err)
		if err != nil {
			return fail("property "+name, err)
		}
		st.longArrayProps[name] = arr
		if err := sb.throttle(ctx); err != nil {
			return fail("property "+name, err)
		}
	}
	for name, pb := range sb.doubleArrayProps {
		pstart := time.Now()
		arr, stats, err := pb.Build(ctx, sb.idMap, sb.opts.concurrency)
		sb.metrics.RecordPropertyBuild(name, stats.Imported, time.Since(pstart), err)
		sb.logger.LogPropertyBuilt(ctx, name, stats.Imported, err)
		if err != nil {
			return fail("property "+name, err)
		}
		st.doubleArrayProps[name] = arr
		if err := sb.throttle(ctx); err != nil {
			return fail("property "+name, err)
		}
	}

	if sb.overBudget.Load() {
		return fail("finalize", resource.ErrMemoryLimitExceeded)
	}

	sb.metrics.RecordBuild(time.Since(start), nil)
	sb.logger.LogBuildComplete(ctx, st.NodeCount(), sb.controller.MemoryUsed(), nil)

	return st, nil
}

// Store is a sealed in-memory graph: the id map, the adjacency lists, and
// the imported property columns. All accessors are safe for concurrent use.
type Store struct {
	idMap    *importer.IDMap
	topology *adjacency.List

	longProps        map[string]*sparse.Array[int64]
	doubleProps      map[string]*sparse.Array[float64]
	longArrayProps   map[string]*sparse.SliceArray[int64]
	doubleArrayProps map[string]*sparse.SliceArray[float64]

	controller *resource.Controller
	logger     *Logger
	closed     atomic.Bool
}

// NodeCount returns the number of distinct imported nodes.
func (s *Store) NodeCount() uint64 {
	return s.idMap.NodeCount()
}

// ToMapped translates an original id to its mapped id.
// The second return value is false for ids that were never recorded.
func (s *Store) ToMapped(originalID uint64) (uint64, bool) {
	return s.idMap.ToMapped(originalID)
}

// ToOriginal translates a mapped id back to the original id.
func (s *Store) ToOriginal(mapped uint64) uint64 {
	return s.idMap.ToOriginal(mapped)
}

// Degree returns the number of targets of the given mapped node.
func (s *Store) Degree(node uint64) int {
	return s.topology.Degree(node)
}

// Targets decodes and returns the target list of the given mapped node.
// For repeated traversal prefer NewCursor.
func (s *Store) Targets(node uint64) []uint64 {
	return s.topology.Targets(node)
}

// NewCursor returns a reusable cursor over the adjacency lists.
// Cursors are not safe for concurrent use; create one per goroutine.
func (s *Store) NewCursor() *adjacency.Cursor {
	return s.topology.NewCursor()
}

// LongProperty returns the named int64 column.
func (s *Store) LongProperty(name string) (*sparse.Array[int64], bool) {
	p, ok := s.longProps[name]
	return p, ok
}

// DoubleProperty returns the named float64 column.
func (s *Store) DoubleProperty(name string) (*sparse.Array[float64], bool) {
	p, ok := s.doubleProps[name]
	return p, ok
}

// LongArrayProperty returns the named []int64 column.
func (s *Store) LongArrayProperty(name string) (*sparse.SliceArray[int64], bool) {
	p, ok := s.longArrayProps[name]
	return p, ok
}

// DoubleArrayProperty returns the named []float64 column.
func (s *Store) DoubleArrayProperty(name string) (*sparse.SliceArray[float64], bool) {
	p, ok := s.doubleArrayProps[name]
	return p, ok
}

// MemoryUsed returns the bytes of managed memory the store accounts for.
func (s *Store) MemoryUsed() int64 {
	return s.controller.MemoryUsed()
}

// Close releases off-heap adjacency pages and returns the reserved budget.
// It is idempotent.
func (s *Store) Close() error {
	if s == nil || s.closed.Swap(true) {
		return nil
	}

	err := s.topology.Close()
	s.controller.Release(s.controller.MemoryReserved())
	s.logger.LogClose(context.Background(), s.controller.MemoryUsed(), err)

	return err
}
