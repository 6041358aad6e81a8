package importer

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/hugego/sparse"
)

// Stats summarizes one property column build.
type Stats struct {
	// Imported is the number of values carried into the mapped space.
	Imported uint64
}

// PropertyBuilder stages a numeric node property keyed by original id.
// Workers call Set concurrently for disjoint ids; Build remaps the
// column into the mapped id space once the id map exists.
type PropertyBuilder[V sparse.Number] struct {
	defaultVal V
	opts       []sparse.BuilderOption
	staging    *sparse.Builder[V]
}

// NewPropertyBuilder creates a builder whose unset nodes read as
// defaultValue. Options apply to the staging table and to the remapped
// table built later.
func NewPropertyBuilder[V sparse.Number](defaultValue V, opts ...sparse.BuilderOption) *PropertyBuilder[V] {
	return &PropertyBuilder[V]{
		defaultVal: defaultValue,
		opts:       opts,
		staging:    sparse.NewBuilder(defaultValue, opts...),
	}
}

// Set stages value for the node with the given original id.
func (p *PropertyBuilder[V]) Set(originalID uint64, value V) {
	p.staging.Set(originalID, value)
}

// Build remaps the staged column into the mapped id space: for every
// mapped id whose original carries a value, the value lands at the
// mapped index. Returns the sealed column and how many values moved.
func (p *PropertyBuilder[V]) Build(ctx context.Context, idMap *IDMap, concurrency int) (*sparse.Array[V], Stats, error) {
	staged := p.staging.Build()

	opts := append([]sparse.BuilderOption{sparse.WithInitialCapacity(idMap.NodeCount())}, p.opts...)
	remapped := sparse.NewBuilder(p.defaultVal, opts...)

	var imported atomic.Uint64
	err := ForEachPartition(ctx, concurrency, idMap.NodeCount(), func(part Partition) error {
		var n uint64
		for mapped := part.Start; mapped < part.Start+part.Count; mapped++ {
			original := idMap.ToOriginal(mapped)
			if staged.Contains(original) {
				remapped.Set(mapped, staged.Get(original))
				n++
			}
		}
		imported.Add(n)
		return nil
	})
	if err != nil {
		return nil, Stats{}, err
	}
	return remapped.Build(), Stats{Imported: imported.Load()}, nil
}

// SlicePropertyBuilder is the slice-valued counterpart of
// PropertyBuilder, for array properties like embeddings or timestamps.
type SlicePropertyBuilder[E sparse.Number] struct {
	defaultVal []E
	opts       []sparse.BuilderOption
	staging    *sparse.SliceBuilder[E]
}

// NewSlicePropertyBuilder creates a builder whose unset nodes read as
// defaultValue.
func NewSlicePropertyBuilder[E sparse.Number](defaultValue []E, opts ...sparse.BuilderOption) *SlicePropertyBuilder[E] {
	return &SlicePropertyBuilder[E]{
		defaultVal: defaultValue,
		opts:       opts,
		staging:    sparse.NewSliceBuilder(defaultValue, opts...),
	}
}

// Set stages value for the node with the given original id. The column
// takes ownership of the slice.
func (p *SlicePropertyBuilder[E]) Set(originalID uint64, value []E) {
	p.staging.Set(originalID, value)
}

// Build remaps the staged column into the mapped id space. The slices
// move by reference.
func (p *SlicePropertyBuilder[E]) Build(ctx context.Context, idMap *IDMap, concurrency int) (*sparse.SliceArray[E], Stats, error) {
	staged := p.staging.Build()

	opts := append([]sparse.BuilderOption{sparse.WithInitialCapacity(idMap.NodeCount())}, p.opts...)
	remapped := sparse.NewSliceBuilder(p.defaultVal, opts...)

	var imported atomic.Uint64
	err := ForEachPartition(ctx, concurrency, idMap.NodeCount(), func(part Partition) error {
		var n uint64
		for mapped := part.Start; mapped < part.Start+part.Count; mapped++ {
			original := idMap.ToOriginal(mapped)
			if staged.Contains(original) {
				remapped.Set(mapped, staged.Get(original))
				n++
			}
		}
		imported.Add(n)
		return nil
	})
	if err != nil {
		return nil, Stats{}, err
	}
	return remapped.Build(), Stats{Imported: imported.Load()}, nil
}

// The original-id property kinds the import pipeline ships with.

// NewLongProperties stages an int64 node property.
func NewLongProperties(defaultValue int64, opts ...sparse.BuilderOption) *PropertyBuilder[int64] {
	return NewPropertyBuilder(defaultValue, opts...)
}

// NewDoubleProperties stages a float64 node property.
func NewDoubleProperties(defaultValue float64, opts ...sparse.BuilderOption) *PropertyBuilder[float64] {
	return NewPropertyBuilder(defaultValue, opts...)
}

// NewLongArrayProperties stages an []int64 node property.
func NewLongArrayProperties(defaultValue []int64, opts ...sparse.BuilderOption) *SlicePropertyBuilder[int64] {
	return NewSlicePropertyBuilder(defaultValue, opts...)
}

// NewDoubleArrayProperties stages a []float64 node property.
func NewDoubleArrayProperties(defaultValue []float64, opts ...sparse.BuilderOption) *SlicePropertyBuilder[float64] {
	return NewSlicePropertyBuilder(defaultValue, opts...)
}
