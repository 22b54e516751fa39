package utils

import (
	"math/rand/v2"

	"casino/economy-bot/domain/interfaces"
)

// globalRandom uses the runtime-seeded generator of math/rand/v2, which is safe for concurrent use
type globalRandom struct{}

func (globalRandom) Float64() float64                   { return rand.Float64() }
func (globalRandom) IntN(n int) int                     { return rand.IntN(n) }
func (globalRandom) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultRandom returns the process-wide random source
func DefaultRandom() interfaces.RandomSource {
	return globalRandom{}
}

// NewSeededRandom returns a deterministic source, not safe for concurrent use
func NewSeededRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandInt64Between returns a uniform value in [min, max]
func RandInt64Between(r interface{ IntN(int) int }, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(r.IntN(int(max-min+1)))
}

// RandFloatBetween returns a uniform value in [min, max)
func RandFloatBetween(r interface{ Float64() float64 }, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}
