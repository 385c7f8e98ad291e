package verdict

import (
	"fmt"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
)

// ============================================================================
// DEPLOYMENT THRESHOLDS
// ============================================================================

// ThresholdConfig is the explicit value object carrying deployment gate
// thresholds. Engine code never reads thresholds from the environment;
// callers construct this once and pass it down.
type ThresholdConfig struct {
	MinF1Score      float64 `json:"min_f1_score"`
	MaxFPR          float64 `json:"max_fpr"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// DefaultThresholdConfig returns the standard fraud-model deployment gate:
// F1 at least 0.85, FPR at most 0.01, judged at 95% confidence.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		MinF1Score:      0.85,
		MaxFPR:          0.01,
		ConfidenceLevel: 0.95,
	}
}

// Validate checks threshold ranges
func (c ThresholdConfig) Validate() error {
	if c.MinF1Score < 0 || c.MinF1Score > 1 {
		return fmt.Errorf("%w: min F1 score %f", core.ErrInvalidThreshold, c.MinF1Score)
	}
	if c.MaxFPR < 0 || c.MaxFPR > 1 {
		return fmt.Errorf("%w: max FPR %f", core.ErrInvalidThreshold, c.MaxFPR)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return core.ErrInvalidConfidence
	}
	return nil
}

// ============================================================================
// DEPLOYMENT DECISION
// ============================================================================

// Decision is the outcome of checking a snapshot against deployment
// thresholds. Every failed rule contributes one violation; rules never
// short-circuit, so reviewers see the complete picture.
type Decision struct {
	Passes      bool            `json:"passes"`
	Violations  []string        `json:"violations,omitempty"`
	Config      ThresholdConfig `json:"config"`
	EvaluatedAt core.Timestamp  `json:"evaluated_at"`
}

// ============================================================================
// DEGRADATION COMPARISON
// ============================================================================

// DegradationResult compares one metric between a baseline snapshot and a
// candidate snapshot, typically training-time versus production.
type DegradationResult struct {
	Metric metrics.Metric `json:"metric"`

	BaselineValue  float64                `json:"baseline_value"`
	BaselineCI     metrics.MetricEstimate `json:"baseline_ci"`
	CandidateValue float64                `json:"candidate_value"`
	CandidateCI    metrics.MetricEstimate `json:"candidate_ci"`

	AbsoluteDifference float64 `json:"absolute_difference"`
	// RelativeChange is nil when the baseline value is zero
	RelativeChange *float64 `json:"relative_change,omitempty"`

	ConfidenceIntervalsOverlap bool `json:"confidence_intervals_overlap"`
	// SignificantDegradation is true only when the intervals are disjoint
	// AND the candidate moved in the worse direction for this metric
	SignificantDegradation bool `json:"significant_degradation"`

	ComparedAt core.Timestamp `json:"compared_at"`
}

// WorseDirectionLower reports whether lower candidate values mean degradation
// for the metric (true for F1, false for FPR, where higher is worse).
func WorseDirectionLower(metric metrics.Metric) (bool, error) {
	switch metric {
	case metrics.MetricF1:
		return true, nil
	case metrics.MetricFPR:
		return false, nil
	default:
		return false, core.NewUnsupportedMetricError(string(metric))
	}
}
