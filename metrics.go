package hugego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting import metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    buildCounter   prometheus.Counter
//	    buildHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordBuild(duration time.Duration, err error) {
//	    p.buildCounter.Inc()
//	    p.buildHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordIDMapBuild is called after the id map phase.
	// nodeCount is the number of distinct nodes, err is nil if successful.
	RecordIDMapBuild(nodeCount uint64, duration time.Duration, err error)

	// RecordPropertyBuild is called after each property column is remapped.
	// imported is the number of values carried over, err is nil if successful.
	RecordPropertyBuild(name string, imported uint64, duration time.Duration, err error)

	// RecordBuild is called after the final build phase.
	RecordBuild(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIDMapBuild(uint64, time.Duration, error)            {}
func (NoopMetricsCollector) RecordPropertyBuild(string, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordBuild(time.Duration, error)                         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IDMapBuildCount      atomic.Int64
	IDMapBuildErrors     atomic.Int64
	IDMapBuildTotalNanos atomic.Int64
	IDMapNodes           atomic.Int64
	PropertyBuildCount   atomic.Int64
	PropertyBuildErrors  atomic.Int64
	PropertyItems        atomic.Int64
	BuildCount           atomic.Int64
	BuildErrors          atomic.Int64
	BuildTotalNanos      atomic.Int64
}

// RecordIDMapBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIDMapBuild(nodeCount uint64, duration time.Duration, err error) {
	b.IDMapBuildCount.Add(1)
	b.IDMapBuildTotalNanos.Add(duration.Nanoseconds())
	b.IDMapNodes.Add(int64(nodeCount))
	if err != nil {
		b.IDMapBuildErrors.Add(1)
	}
}

// RecordPropertyBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPropertyBuild(name string, imported uint64, duration time.Duration, err error) {
	b.PropertyBuildCount.Add(1)
	b.PropertyItems.Add(int64(imported))
	if err != nil {
		b.PropertyBuildErrors.Add(1)
	}
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IDMapBuildCount:     b.IDMapBuildCount.Load(),
		IDMapBuildErrors:    b.IDMapBuildErrors.Load(),
		IDMapBuildAvgNanos:  b.getAvgIDMapBuildNanos(),
		IDMapNodes:          b.IDMapNodes.Load(),
		PropertyBuildCount:  b.PropertyBuildCount.Load(),
		PropertyBuildErrors: b.PropertyBuildErrors.Load(),
		PropertyItems:       b.PropertyItems.Load(),
		BuildCount:          b.BuildCount.Load(),
		BuildErrors:         b.BuildErrors.Load(),
		BuildAvgNanos:       b.getAvgBuildNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgIDMapBuildNanos() int64 {
	count := b.IDMapBuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.IDMapBuildTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IDMapBuildCount     int64
	IDMapBuildErrors    int64
	IDMapBuildAvgNanos  int64
	IDMapNodes          int64
	PropertyBuildCount  int64
	PropertyBuildErrors int64
	PropertyItems       int64
	BuildCount          int64
	BuildErrors         int64
	BuildAvgNanos       int64
}
