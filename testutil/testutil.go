package testutil

import (
	"math"
	"math/rand"
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

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Mask returns the largest code of the given width.
func Mask(bitWidth int) uint64 {
	if bitWidth >= 64 {
		return math.MaxUint64
	}
	return uint64(1)<<uint(bitWidth) - 1
}

// Code returns a uniform code of the given width.
func (r *RNG) Code(bitWidth int) uint64 {
	return r.Uint64() & Mask(bitWidth)
}

// Codes returns n uniform codes of the given width.
// Locks only once per call (preferred over calling Code in a loop).
func (r *RNG) Codes(n, bitWidth int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	mask := Mask(bitWidth)
	codes := make([]uint64, n)
	for i := range codes {
		codes[i] = r.rand.Uint64() & mask
	}
	return codes
}

// ZipfCodes returns n codes of the given width whose values follow a
// power law with skew s > 1: small codes dominate.
func (r *RNG) ZipfCodes(n, bitWidth int, s float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	z := rand.NewZipf(r.rand, s, 1, Mask(bitWidth))
	codes := make([]uint64, n)
	for i := range codes {
		codes[i] = z.Uint64()
	}
	return codes
}

// SortedCodes returns n non-decreasing codes spread over the full domain.
// Sorted data lets early-stopping scans settle on long runs.
func SortedCodes(n, bitWidth int) []uint64 {
	mask := Mask(bitWidth)
	codes := make([]uint64, n)
	if n == 0 {
		return codes
	}
	den := uint64(max(n-1, 1))
	for i := range codes {
		codes[i] = uint64(i) * mask / den
	}
	return codes
}

// Sparse returns n flags where each is set with probability rate.
func (r *RNG) Sparse(n int, rate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	flags := make([]bool, n)
	for i := range flags {
		flags[i] = r.rand.Float64() < rate
	}
	return flags
}

// LiteralForSelectivity returns the literal for which roughly sel of uniform
// codes of the given width compare less than it.
func LiteralForSelectivity(bitWidth int, sel float64) uint64 {
	sel = min(max(sel, 0), 1)
	return uint64(float64(Mask(bitWidth)) * sel)
}

// MatchPositions returns the ascending positions i with pred(codes[i]).
func MatchPositions(codes []uint64, pred func(uint64) bool) []int {
	out := make([]int, 0)
	for i, c := range codes {
		if pred(c) {
			out = append(out, i)
		}
	}
	return out
}

// MatchPairs returns the ascending positions i with pred(a[i], b[i]).
// a and b must have equal length.
func MatchPairs(a, b []uint64, pred func(x, y uint64) bool) []int {
	out := make([]int, 0)
	for i := range a {
		if pred(a[i], b[i]) {
			out = append(out, i)
		}
	}
	return out
}
