// Package random provides uniform random selection over a pluggable source.
package random

import (
	"math"
	"math/rand/v2"
)

// Source produces uniformly distributed non-negative integers.
type Source interface {
	// Intn returns a random int in [0, n). Panics if n <= 0.
	Intn(n int) int
}

// mathSource implements Source using math/rand/v2.
//
// Invariant: All values produced are uniformly distributed in [0, n) for
// any n > 0. The source is not cryptographically secure and is not meant
// to be.
type mathSource struct {
	rng *rand.Rand
}

// NewMathSource returns a Source backed by math/rand/v2 with a random seed.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewMathSource() Source {
	return &mathSource{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededSource returns a deterministic Source for reproducible runs.
func NewSeededSource(seed uint64) Source {
	return &mathSource{rng: rand.New(rand.NewPCG(seed, 0))}
}

// Intn returns a uniformly distributed int in [0, n).
//
// Precondition: n > 0. Panics with "random: Intn called with n <= 0" otherwise.
func (m *mathSource) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn called with n <= 0")
	}
	return m.rng.IntN(n)
}

// IntBetween returns a uniformly distributed integer in
// [floor(min), floor(max)).
//
// Precondition: floor(min) < floor(max); src must be non-nil. A degenerate
// range is a contract violation and panics.
func IntBetween(src Source, min, max float64) int {
	lo := int(math.Floor(min))
	hi := int(math.Floor(max))
	return src.Intn(hi-lo) + lo
}

// PickKey returns a uniformly chosen element of keys.
//
// Precondition: keys must be non-empty; src must be non-nil. Callers that
// need determinism across runs must pass keys in a stable order.
func PickKey(src Source, keys []string) string {
	if len(keys) == 0 {
		panic("random: PickKey called with no keys")
	}
	return keys[src.Intn(len(keys))]
}
