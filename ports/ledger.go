package ports

import (
	"context"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/verdict"
)

// LedgerWriterPort provides append-only write access to the validation audit trail
// This is the ONLY way to persist evaluation results - prevents read-after-write coupling
type LedgerWriterPort interface {
	StoreSnapshot(ctx context.Context, snapshot *metrics.PerformanceSnapshot) error
	StoreDecision(ctx context.Context, snapshotID core.SnapshotID, decision *verdict.Decision) error
	StoreComparison(ctx context.Context, comparison *verdict.DegradationResult, baselineID, candidateID core.SnapshotID) error
}

// LedgerReaderPort provides read-only access to stored evaluation results
// Use this for queries, baselines, and API access
type LedgerReaderPort interface {
	GetSnapshot(ctx context.Context, id core.SnapshotID) (*metrics.PerformanceSnapshot, error)
	GetLatestSnapshot(ctx context.Context, modelID core.ModelID) (*metrics.PerformanceSnapshot, error)
	ListSnapshots(ctx context.Context, filters SnapshotFilters) ([]*metrics.PerformanceSnapshot, error)
	GetDecision(ctx context.Context, snapshotID core.SnapshotID) (*verdict.Decision, error)
}

// SnapshotFilters for querying stored snapshots
type SnapshotFilters struct {
	ModelID *core.ModelID
	Limit   int
	Offset  int
}

// LedgerPort combines read and write access for components that own the trail
type LedgerPort interface {
	LedgerWriterPort
	LedgerReaderPort
}
