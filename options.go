package hugego

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/hugego/adjacency"
)

type options struct {
	concurrency      int
	memoryLimit      int64
	allocBytesPerSec int64
	compression      adjacency.Compression
	offHeapAdjacency bool
	dedupeCapacity   uint64
	dedupe           bool
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures StoreBuilder behavior.
type Option func(*options)

// WithConcurrency sets the number of workers used by the build phases
// (id map merge, property remapping, reverse map drain).
//
// Appenders and property setters are not bound by this value; callers drive
// those from however many goroutines they like. Defaults to GOMAXPROCS.
func WithConcurrency(concurrency int) Option {
	return func(o *options) {
		o.concurrency = concurrency
	}
}

// WithMemoryLimit caps the managed memory of the import at the given number
// of bytes. Build phases fail with resource.ErrMemoryLimitExceeded (wrapped
// in an *ErrBuildFailed) once an up-front reservation would exceed the cap.
//
// If unset, memory is tracked but never limited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithAllocThrottle caps the allocation rate of bulk build phases at the
// given number of bytes per second. Useful to keep an import from starving
// co-located query traffic.
func WithAllocThrottle(bytesPerSec int64) Option {
	return func(o *options) {
		o.allocBytesPerSec = bytesPerSec
	}
}

// WithAdjacencyCompression selects the block codec for adjacency storage.
//
// Example:
//
//	sb := hugego.NewStoreBuilder(
//	    hugego.WithAdjacencyCompression(adjacency.CompressionZSTD),
//	)
func WithAdjacencyCompression(codec adjacency.Compression) Option {
	return func(o *options) {
		o.compression = codec
	}
}

// WithOffHeapAdjacency places adjacency pages in anonymous mappings outside
// the Go heap. Store.Close unmaps them.
func WithOffHeapAdjacency() Option {
	return func(o *options) {
		o.offHeapAdjacency = true
	}
}

// WithIDDeduplication enables cross-worker duplicate detection during node
// id recording. capacity is a hint for the highest expected original id.
//
// Without it, RecordSeen only reports duplicates within a single worker set;
// the id map itself folds duplicates either way.
func WithIDDeduplication(capacity uint64) Option {
	return func(o *options) {
		o.dedupe = true
		o.dedupeCapacity = capacity
	}
}

// WithMetricsCollector configures a metrics collector for the build phases.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hugego.BasicMetricsCollector{}
//	sb := hugego.NewStoreBuilder(hugego.WithMetricsCollector(metrics))
//	// ... import ...
//	stats := metrics.GetStats()
//	fmt.Printf("nodes: %d, id map avg: %dns\n", stats.IDMapNodes, stats.IDMapBuildAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for build lifecycle events.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := hugego.NewJSONLogger(slog.LevelInfo)
//	sb := hugego.NewStoreBuilder(hugego.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		concurrency:      runtime.GOMAXPROCS(0),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
