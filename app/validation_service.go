package app

import (
	"context"
	"time"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/verdict"
	"modelgate/internal/degrade"
	"modelgate/internal/evaluate"
	"modelgate/internal/policy"
	"modelgate/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ValidationService runs the full governance workflow for one model:
// resolve labeled outcomes, compute a performance snapshot, judge it against
// deployment thresholds, persist the audit trail, and compare against the
// stored baseline for degradation.
type ValidationService struct {
	source     ports.OutcomeSource
	ledger     ports.LedgerPort
	calculator *evaluate.Calculator
	policy     *policy.Policy
	detector   *degrade.Detector

	// Bootstrap evaluations are CPU-heavy; the semaphore caps how many run
	// at once so interactive requests stay responsive
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// ValidationRequest defines the inputs for one auditable validation run
type ValidationRequest struct {
	ModelID core.ModelID
	// Source names the dataset for the outcome source adapter
	Source     string
	WithScores bool
	Seed       int64
	// CompareBaseline requests a degradation check against the latest
	// stored snapshot for the model
	CompareBaseline bool
	// Timeout bounds the evaluation; zero means no deadline beyond ctx
	Timeout time.Duration
}

// ValidationReport is the complete output handed to reporting collaborators
type ValidationReport struct {
	Snapshot     *metrics.PerformanceSnapshot `json:"snapshot"`
	Decision     verdict.Decision             `json:"decision"`
	Degradations []verdict.DegradationResult  `json:"degradations,omitempty"`
	// RequiresRevalidation is set when any compared metric significantly
	// degraded relative to the baseline
	RequiresRevalidation bool  `json:"requires_revalidation"`
	RuntimeMs            int64 `json:"runtime_ms"`
}

// NewValidationService creates a validation service
func NewValidationService(
	source ports.OutcomeSource,
	ledger ports.LedgerPort,
	calculator *evaluate.Calculator,
	pol *policy.Policy,
	detector *degrade.Detector,
	maxConcurrent int64,
	logger *zap.Logger,
) *ValidationService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationService{
		source:     source,
		ledger:     ledger,
		calculator: calculator,
		policy:     pol,
		detector:   detector,
		sem:        semaphore.NewWeighted(maxConcurrent),
		logger:     logger,
	}
}

// Validate executes the governance workflow end to end
func (s *ValidationService) Validate(ctx context.Context, req ValidationRequest) (*ValidationReport, error) {
	startTime := time.Now()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	s.logger.Info("validation_started",
		zap.String("model_id", req.ModelID.String()),
		zap.String("source", req.Source),
		zap.Int64("seed", req.Seed),
	)

	set, err := s.source.ResolveOutcomes(ctx, ports.OutcomeRequest{
		ModelID:    req.ModelID,
		Source:     req.Source,
		WithScores: req.WithScores,
	})
	if err != nil {
		return nil, err
	}

	// Baseline lookup happens before the new snapshot is stored, so the
	// comparison never sees the candidate as its own baseline
	var baseline *metrics.PerformanceSnapshot
	if req.CompareBaseline {
		baseline, err = s.ledger.GetLatestSnapshot(ctx, req.ModelID)
		if err != nil && !core.IsNotFoundError(err) {
			return nil, err
		}
	}

	snapshot, err := s.calculator.Evaluate(ctx, evaluate.EvaluationRequest{
		ModelID: req.ModelID,
		Set:     set,
		Seed:    req.Seed,
	})
	if err != nil {
		return nil, err
	}

	decision := s.policy.Evaluate(snapshot)

	if err := s.ledger.StoreSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := s.ledger.StoreDecision(ctx, snapshot.ID, &decision); err != nil {
		return nil, err
	}

	report := &ValidationReport{
		Snapshot: snapshot,
		Decision: decision,
	}

	if baseline != nil {
		for _, metric := range metrics.ComparableMetrics() {
			result, err := s.detector.Compare(baseline, snapshot, metric)
			if err != nil {
				return nil, err
			}
			report.Degradations = append(report.Degradations, result)
			if result.SignificantDegradation {
				report.RequiresRevalidation = true
			}
			if err := s.ledger.StoreComparison(ctx, &result, baseline.ID, snapshot.ID); err != nil {
				return nil, err
			}
		}
		if report.RequiresRevalidation {
			s.logger.Warn("revalidation_required",
				zap.String("model_id", req.ModelID.String()),
				zap.String("baseline_snapshot", baseline.ID.String()),
				zap.String("candidate_snapshot", snapshot.ID.String()),
			)
		}
	}

	report.RuntimeMs = time.Since(startTime).Milliseconds()
	s.logger.Info("validation_complete",
		zap.String("model_id", req.ModelID.String()),
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.Bool("passes", decision.Passes),
		zap.Int("violations", len(decision.Violations)),
		zap.Int64("runtime_ms", report.RuntimeMs),
	)

	return report, nil
}

// Compare runs a standalone degradation check between two stored snapshots
func (s *ValidationService) Compare(ctx context.Context, baselineID, candidateID core.SnapshotID, metric metrics.Metric) (*verdict.DegradationResult, error) {
	baseline, err := s.ledger.GetSnapshot(ctx, baselineID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.ledger.GetSnapshot(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	result, err := s.detector.Compare(baseline, candidate, metric)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.StoreComparison(ctx, &result, baselineID, candidateID); err != nil {
		return nil, err
	}
	return &result, nil
}

// Snapshot fetches one stored snapshot with its decision, when present
func (s *ValidationService) Snapshot(ctx context.Context, id core.SnapshotID) (*metrics.PerformanceSnapshot, *verdict.Decision, error) {
	snapshot, err := s.ledger.GetSnapshot(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	decision, err := s.ledger.GetDecision(ctx, id)
	if err != nil {
		if core.IsNotFoundError(err) {
			return snapshot, nil, nil
		}
		return nil, nil, err
	}
	return snapshot, decision, nil
}

// LatestSnapshot fetches the most recent stored snapshot for a model
func (s *ValidationService) LatestSnapshot(ctx context.Context, modelID core.ModelID) (*metrics.PerformanceSnapshot, error) {
	return s.ledger.GetLatestSnapshot(ctx, modelID)
}
