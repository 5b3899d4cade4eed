package rng

import (
	"math/rand/v2"
)

// Source provides the uniform draws the games consume. Implementations must be
// safe for use from a single session at a time; the engine never shares one draw
// sequence across concurrent sessions without external synchronization.
type Source interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

// defaultSource delegates to the process-wide math/rand/v2 generator.
type defaultSource struct{}

func (defaultSource) IntN(n int) int { return rand.IntN(n) }

// Default returns the process-wide randomness source.
func Default() Source { return defaultSource{} }

// Seeded returns a deterministic source for tests and replays.
func Seeded(seed uint64) Source {
	return &seededSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type seededSource struct {
	r *rand.Rand
}

func (s *seededSource) IntN(n int) int { return s.r.IntN(n) }

// Uniform draws a uniform integer in [min, max] inclusive.
func Uniform(src Source, min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + src.IntN(max-min+1)
}

// Symbol draws one element from a non-empty alphabet.
func Symbol[T any](src Source, alphabet []T) T {
	return alphabet[src.IntN(len(alphabet))]
}
