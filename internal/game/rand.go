package game

import "math/rand/v2"

// Rand is the randomness the engine needs. *rand.Rand from math/rand/v2
// satisfies it; tests pass a seeded PCG source.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the runtime-seeded global source.
var DefaultRand Rand = globalRand{}

// NewSeededRand returns a deterministic source for tests and replays.
func NewSeededRand(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// Shuffle is an in-place Fisher–Yates: for i from the last index down to 1,
// swap s[i] with s[j], j uniform in [0, i].
func Shuffle[T any](r Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
