package rng

import (
	"context"
	"math/rand"
)

// Adapter implements ports.RNGPort with plain math/rand sources. Every
// stream is derived from explicit seeds only, so the same inputs replay
// the same draw sequence on any platform.
type Adapter struct{}

// New creates the default RNG adapter
func New() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *Adapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name != "" {
		seed += int64(hashString(name))
	}
	return rand.New(rand.NewSource(seed)), nil
}

// IterationStream derives the stream for one bootstrap iteration. Deriving
// from (seed, iteration) rather than one shared source keeps the resampled
// index sequence identical no matter how iterations land on workers.
func (a *Adapter) IterationStream(seed int64, iteration int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(iteration)))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
