package wheel

import (
	"math/rand/v2"
	"slices"
)

// RNG abstracts random number generation for deterministic testing.
// A Store hands one RNG to every wheel it creates and wheels spin
// independently, so implementations must be safe for concurrent use.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// randomSource delegates to math/rand/v2 (auto-seeded, safe for concurrent use).
type randomSource struct{}

func (randomSource) Intn(n int) int { return rand.IntN(n) }

// NewRandomSource returns the process-wide random source.
func NewRandomSource() RNG {
	return randomSource{}
}

// SelectWinner picks the winning index for names. A predetermined name that
// occurs in names wins deterministically at its first position; an empty or
// unknown predetermined name falls back to a uniform draw from rng.
func SelectWinner(names []string, predetermined string, rng RNG) (int, error) {
	if len(names) == 0 {
		return 0, ErrNoNames
	}
	if predetermined != "" {
		if i := slices.Index(names, predetermined); i >= 0 {
			return i, nil
		}
	}
	return rng.Intn(len(names)), nil
}
