package sparse

const (
	// PageShift is the power-of-two exponent of the page size.
	PageShift = 12
	// PageSize is the number of values per page.
	PageSize = 1 << PageShift
	// PageMask extracts the offset within a page from an index.
	PageMask = PageSize - 1
)

// Number is the set of primitive value types a sparse array can hold.
type Number interface {
	~byte | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// BuilderOption configures a growing builder.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	initialCapacity uint64
	trackAlloc      func(int64)
}

// WithInitialCapacity pre-sizes the page table for the given index space.
// The builder grows past it on demand; this only avoids early regrowth.
func WithInitialCapacity(capacity uint64) BuilderOption {
	return func(o *builderOptions) {
		o.initialCapacity = capacity
	}
}

// WithAllocationTracking registers fn to be called with the byte size of
// every page the builder materializes. The hook may run under the
// builder's page lock: it must be fast and must not call back into the
// builder.
func WithAllocationTracking(fn func(int64)) BuilderOption {
	return func(o *builderOptions) {
		o.trackAlloc = fn
	}
}

func fillPage[V Number](page []V, value V) {
	for i := range page {
		page[i] = value
	}
}
