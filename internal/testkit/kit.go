package testkit

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/outcome"
	"modelgate/domain/verdict"
	"modelgate/ports"
)

// TestKit provides testing fixtures: an in-memory ledger, a deterministic
// RNG, and a synthetic outcome source
type TestKit struct {
	ledger *MemoryLedger
}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{ledger: NewMemoryLedger()}
}

// Ledger returns the shared in-memory ledger
func (t *TestKit) Ledger() *MemoryLedger { return t.ledger }

// RNGAdapter returns a deterministic RNG port
func (t *TestKit) RNGAdapter() ports.RNGPort { return &RNGAdapter{} }

// OutcomeSource returns a source serving generated outcomes for any request
func (t *TestKit) OutcomeSource(config OutcomeGeneratorConfig) ports.OutcomeSource {
	return &GeneratedOutcomeSource{config: config}
}

// ============================================================================
// RNG FAKES
// ============================================================================

// RNGAdapter implements the RNGPort interface for testing
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed)), nil
}

// IterationStream derives the per-iteration stream exactly like the
// production adapter, seed plus iteration index
func (r *RNGAdapter) IterationStream(seed int64, iteration int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(iteration)))
}

// RecordingRNG wraps RNGAdapter and records which (seed, iteration) streams
// were requested, for asserting that metrics share one draw per iteration
type RecordingRNG struct {
	inner RNGAdapter

	mu       sync.Mutex
	requests []IterationKey
}

// IterationKey identifies one requested iteration stream
type IterationKey struct {
	Seed      int64
	Iteration int
}

func (r *RecordingRNG) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return r.inner.SeededStream(ctx, name, seed)
}

func (r *RecordingRNG) IterationStream(seed int64, iteration int) *rand.Rand {
	r.mu.Lock()
	r.requests = append(r.requests, IterationKey{Seed: seed, Iteration: iteration})
	r.mu.Unlock()
	return r.inner.IterationStream(seed, iteration)
}

// Requests returns the recorded stream requests sorted by iteration
func (r *RecordingRNG) Requests() []IterationKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]IterationKey(nil), r.requests...)
	sort.Slice(out, func(a, b int) bool { return out[a].Iteration < out[b].Iteration })
	return out
}

// ============================================================================
// OUTCOME SOURCE FAKES
// ============================================================================

// StaticOutcomeSource serves one fixed label set for every request
type StaticOutcomeSource struct {
	Set *outcome.LabelSet
	Err error
}

func (s *StaticOutcomeSource) ResolveOutcomes(ctx context.Context, req ports.OutcomeRequest) (*outcome.LabelSet, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Set, nil
}

// GeneratedOutcomeSource synthesizes a fresh outcome set per request,
// re-seeding from the configured seed so requests are reproducible
type GeneratedOutcomeSource struct {
	config OutcomeGeneratorConfig
}

func (s *GeneratedOutcomeSource) ResolveOutcomes(ctx context.Context, req ports.OutcomeRequest) (*outcome.LabelSet, error) {
	gen := NewOutcomeGenerator(s.config)
	if req.WithScores {
		return gen.Generate()
	}
	return gen.GenerateWithoutScores()
}

// ============================================================================
// IN-MEMORY LEDGER
// ============================================================================

// MemoryLedger implements LedgerPort with in-memory storage
type MemoryLedger struct {
	mu          sync.RWMutex
	snapshots   map[core.SnapshotID]*metrics.PerformanceSnapshot
	order       []core.SnapshotID
	decisions   map[core.SnapshotID]*verdict.Decision
	comparisons []*verdict.DegradationResult
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		snapshots: make(map[core.SnapshotID]*metrics.PerformanceSnapshot),
		decisions: make(map[core.SnapshotID]*verdict.Decision),
	}
}

func (l *MemoryLedger) StoreSnapshot(ctx context.Context, snapshot *metrics.PerformanceSnapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.snapshots[snapshot.ID]; !exists {
		l.order = append(l.order, snapshot.ID)
	}
	l.snapshots[snapshot.ID] = snapshot
	return nil
}

func (l *MemoryLedger) StoreDecision(ctx context.Context, snapshotID core.SnapshotID, decision *verdict.Decision) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decisions[snapshotID] = decision
	return nil
}

func (l *MemoryLedger) StoreComparison(ctx context.Context, comparison *verdict.DegradationResult, baselineID, candidateID core.SnapshotID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.comparisons = append(l.comparisons, comparison)
	return nil
}

func (l *MemoryLedger) GetSnapshot(ctx context.Context, id core.SnapshotID) (*metrics.PerformanceSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snapshot, exists := l.snapshots[id]
	if !exists {
		return nil, core.NewNotFoundError("snapshot", id.String())
	}
	return snapshot, nil
}

func (l *MemoryLedger) GetLatestSnapshot(ctx context.Context, modelID core.ModelID) (*metrics.PerformanceSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.order) - 1; i >= 0; i-- {
		snapshot := l.snapshots[l.order[i]]
		if snapshot.ModelID == modelID {
			return snapshot, nil
		}
	}
	return nil, core.NewNotFoundError("snapshot for model", modelID.String())
}

func (l *MemoryLedger) ListSnapshots(ctx context.Context, filters ports.SnapshotFilters) ([]*metrics.PerformanceSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var results []*metrics.PerformanceSnapshot
	skipped := 0
	for _, id := range l.order {
		snapshot := l.snapshots[id]
		if filters.ModelID != nil && snapshot.ModelID != *filters.ModelID {
			continue
		}
		if skipped < filters.Offset {
			skipped++
			continue
		}
		results = append(results, snapshot)
		if filters.Limit > 0 && len(results) >= filters.Limit {
			break
		}
	}
	return results, nil
}

func (l *MemoryLedger) GetDecision(ctx context.Context, snapshotID core.SnapshotID) (*verdict.Decision, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	decision, exists := l.decisions[snapshotID]
	if !exists {
		return nil, core.NewNotFoundError("decision for snapshot", snapshotID.String())
	}
	return decision, nil
}

// Comparisons returns stored degradation results, oldest first
func (l *MemoryLedger) Comparisons() []*verdict.DegradationResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*verdict.DegradationResult(nil), l.comparisons...)
}
