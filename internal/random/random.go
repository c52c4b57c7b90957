// Package random provides bounded integer draws and uniform shuffling
// on top of an owned seeded source.
package random

import (
	"math/rand"
	"time"
)

// Source wraps a seeded *rand.Rand. It is not safe for concurrent use;
// each owner (generator, session) keeps its own.
type Source struct {
	rng *rand.Rand
}

func New() *Source {
	return &Source{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded is used by tests that need a reproducible sequence.
func NewSeeded(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// IntBetween returns a uniform integer in [min, max] inclusive.
// If max < min the bounds are swapped.
func (s *Source) IntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + s.rng.Intn(max-min+1)
}

// Intn returns a uniform integer in [0, n).
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Chance returns true with probability p in [0,1].
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// ShuffleInts performs a Fisher–Yates shuffle in place.
func (s *Source) ShuffleInts(values []int) {
	for i := len(values) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}

// Shuffle performs a Fisher–Yates shuffle of n elements via swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		swap(i, j)
	}
}
