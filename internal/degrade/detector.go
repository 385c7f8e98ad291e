package degrade

import (
	"math"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/verdict"

	"go.uber.org/zap"
)

// Detector compares a candidate snapshot against a baseline and flags
// statistically significant regression. Significance uses confidence
// interval non-overlap: disjoint intervals plus movement in the worse
// direction for the metric.
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a degradation detector
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger}
}

// Compare evaluates one metric across two snapshots, baseline first.
// Only F1 and FPR are comparable; anything else is a caller error.
func (d *Detector) Compare(baseline, candidate *metrics.PerformanceSnapshot, metric metrics.Metric) (verdict.DegradationResult, error) {
	worseIsLower, err := verdict.WorseDirectionLower(metric)
	if err != nil {
		return verdict.DegradationResult{}, err
	}

	base, err := baseline.Estimate(metric)
	if err != nil {
		return verdict.DegradationResult{}, err
	}
	cand, err := candidate.Estimate(metric)
	if err != nil {
		return verdict.DegradationResult{}, err
	}

	overlap := !(cand.CIUpper < base.CILower || cand.CILower > base.CIUpper)

	worse := cand.Value < base.Value
	if !worseIsLower {
		worse = cand.Value > base.Value
	}
	significant := !overlap && worse

	result := verdict.DegradationResult{
		Metric:                     metric,
		BaselineValue:              base.Value,
		BaselineCI:                 base,
		CandidateValue:             cand.Value,
		CandidateCI:                cand,
		AbsoluteDifference:         math.Abs(cand.Value - base.Value),
		ConfidenceIntervalsOverlap: overlap,
		SignificantDegradation:     significant,
		ComparedAt:                 core.Now(),
	}
	if base.Value != 0 {
		rel := (cand.Value - base.Value) / base.Value
		result.RelativeChange = &rel
	}

	if significant {
		d.logger.Warn("significant_degradation_detected",
			zap.String("metric", string(metric)),
			zap.String("baseline_snapshot", baseline.ID.String()),
			zap.String("candidate_snapshot", candidate.ID.String()),
			zap.Float64("baseline_value", base.Value),
			zap.Float64("candidate_value", cand.Value),
		)
	} else {
		d.logger.Debug("degradation_check_complete",
			zap.String("metric", string(metric)),
			zap.Bool("ci_overlap", overlap),
		)
	}

	return result, nil
}
