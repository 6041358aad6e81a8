package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// OriginalIDs generates num sorted, distinct original node ids with gaps of
// up to maxGap between neighbors. Real imports rarely see a dense id space;
// the gaps simulate deleted ranges and sharded id allocators.
func (r *RNG) OriginalIDs(num int, maxGap uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxGap < 1 {
		maxGap = 1
	}

	ids := make([]uint64, num)
	var next uint64
	for i := range num {
		next += 1 + uint64(r.rand.Int63n(int64(maxGap)))
		ids[i] = next
	}

	return ids
}

// Shuffled returns a shuffled copy of ids. Recording order and id order are
// unrelated in practice; shuffling keeps tests honest about that.
func (r *RNG) Shuffled(ids []uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, len(ids))
	copy(out, ids)
	r.rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out
}

// Targets generates a sorted list of degree distinct target ids in
// [0, nodeCount), ready to hand to an adjacency appender.
func (r *RNG) Targets(nodeCount uint64, degree int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if uint64(degree) > nodeCount {
		degree = int(nodeCount)
	}

	seen := make(map[uint64]struct{}, degree)
	targets := make([]uint64, 0, degree)
	for len(targets) < degree {
		t := uint64(r.rand.Int63n(int64(nodeCount)))
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}

	sort.Slice(targets, func(i, j int) bool {
		return targets[i] < targets[j]
	})

	return targets
}

// Int64s generates num pseudo-random property values in [0, maxVal).
func (r *RNG) Int64s(num int, maxVal int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]int64, num)
	for i := range num {
		values[i] = r.rand.Int63n(maxVal)
	}

	return values
}

// Float64s generates num pseudo-random property values in [0, 1).
func (r *RNG) Float64s(num int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]float64, num)
	for i := range num {
		values[i] = r.rand.Float64()
	}

	return values
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) is proportional to 1/k^s where s is the skew.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
// Node degrees in real graphs follow this kind of power law.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// ZipfDegrees generates one degree per node with Zipfian distribution,
// capped at maxDegree. A handful of hub nodes get large lists while most
// stay small, which is how real adjacency data behaves.
func (r *RNG) ZipfDegrees(num, maxDegree int, s float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	degrees := make([]int, num)
	for i := range num {
		degrees[i] = r.zipfLocked(maxDegree, s)
	}

	return degrees
}
