package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// IterationStream derives the stream for one bootstrap iteration.
	// Streams depend only on (seed, iteration), never on goroutine scheduling,
	// so resampled index sequences replay exactly for a given seed.
	IterationStream(seed int64, iteration int) *rand.Rand
}
