package metrics

import (
	"fmt"
	"math"

	"modelgate/domain/core"
)

// ============================================================================
// CONFUSION COUNTS
// ============================================================================

// ConfusionCounts tallies binary classification outcomes.
// INVARIANTS:
// - all counts >= 0
// - TP + FP + TN + FN == number of evaluated samples
type ConfusionCounts struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// Total returns the number of samples the counts were tallied from
func (c ConfusionCounts) Total() int {
	return c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
}

// Precision returns TP/(TP+FP), or 0.0 when no positive predictions exist.
// The zero fallback keeps degenerate bootstrap resamples finite; callers
// never see NaN from these ratios.
func (c ConfusionCounts) Precision() float64 {
	denom := c.TruePositives + c.FalsePositives
	if denom == 0 {
		return 0.0
	}
	return float64(c.TruePositives) / float64(denom)
}

// Recall returns TP/(TP+FN), or 0.0 when no actual positives exist
func (c ConfusionCounts) Recall() float64 {
	denom := c.TruePositives + c.FalseNegatives
	if denom == 0 {
		return 0.0
	}
	return float64(c.TruePositives) / float64(denom)
}

// F1 returns the harmonic mean of precision and recall, or 0.0 when both
// are zero
func (c ConfusionCounts) F1() float64 {
	p := c.Precision()
	r := c.Recall()
	if p+r == 0 {
		return 0.0
	}
	return 2 * p * r / (p + r)
}

// FPR returns FP/(FP+TN), or 0.0 when no actual negatives exist
func (c ConfusionCounts) FPR() float64 {
	denom := c.FalsePositives + c.TrueNegatives
	if denom == 0 {
		return 0.0
	}
	return float64(c.FalsePositives) / float64(denom)
}

// ============================================================================
// METRIC ESTIMATES
// ============================================================================

// Metric names a performance metric for policy and comparison purposes
type Metric string

const (
	MetricF1        Metric = "f1_score"
	MetricPrecision Metric = "precision"
	MetricRecall    Metric = "recall"
	MetricFPR       Metric = "false_positive_rate"
)

// ComparableMetrics lists the metrics the degradation detector accepts
func ComparableMetrics() []Metric {
	return []Metric{MetricF1, MetricFPR}
}

// MetricEstimate pairs a point estimate with its bootstrap confidence interval.
// INVARIANTS:
// - CILower <= CIUpper
// - for ratio metrics all three values lie in [0, 1]
// - ConfidenceLevel in (0, 1)
type MetricEstimate struct {
	Value           float64 `json:"value"`
	CILower         float64 `json:"ci_lower"`
	CIUpper         float64 `json:"ci_upper"`
	ConfidenceLevel float64 `json:"confidence_level"`
	Bootstraps      int     `json:"bootstraps"`
}

// NewMetricEstimate creates an estimate with ordering validation
func NewMetricEstimate(value, lower, upper, confidence float64, bootstraps int) (MetricEstimate, error) {
	if lower > upper {
		return MetricEstimate{}, fmt.Errorf("CI lower bound %f exceeds upper bound %f", lower, upper)
	}
	if confidence <= 0 || confidence >= 1 {
		return MetricEstimate{}, core.ErrInvalidConfidence
	}
	return MetricEstimate{
		Value:           value,
		CILower:         lower,
		CIUpper:         upper,
		ConfidenceLevel: confidence,
		Bootstraps:      bootstraps,
	}, nil
}

// Degenerate returns the (0, 0, 0) estimate used when a metric is undefined
// on the full dataset, e.g. FPR with no negative samples
func Degenerate(confidence float64, bootstraps int) MetricEstimate {
	return MetricEstimate{
		Value:           0.0,
		CILower:         0.0,
		CIUpper:         0.0,
		ConfidenceLevel: confidence,
		Bootstraps:      bootstraps,
	}
}

// Rounded returns a copy with values rounded to four decimal places for
// presentation. Stored estimates keep full float64 precision.
func (e MetricEstimate) Rounded() MetricEstimate {
	e.Value = round4(e.Value)
	e.CILower = round4(e.CILower)
	e.CIUpper = round4(e.CIUpper)
	return e
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ============================================================================
// PERFORMANCE SNAPSHOT
// ============================================================================

// PerformanceSnapshot is the immutable result of one model evaluation:
// point estimates with confidence intervals for the four ratio metrics,
// an optional AUC-ROC, and the confusion tally they derive from.
type PerformanceSnapshot struct {
	ID      core.SnapshotID `json:"id"`
	ModelID core.ModelID    `json:"model_id"`

	F1        MetricEstimate `json:"f1_score"`
	Precision MetricEstimate `json:"precision"`
	Recall    MetricEstimate `json:"recall"`
	FPR       MetricEstimate `json:"false_positive_rate"`

	// AUCROC is nil when scores were absent or ground truth held a single class
	AUCROC *float64 `json:"auc_roc,omitempty"`

	Counts       ConfusionCounts `json:"confusion_counts"`
	TotalSamples int             `json:"total_samples"`
	Seed         int64           `json:"seed"`

	// LowSampleSize flags evaluations over fewer than 30 samples; a warning,
	// never an error
	LowSampleSize bool `json:"low_sample_size"`

	Fingerprint core.DatasetFingerprint `json:"dataset_fingerprint,omitempty"`
	CreatedAt   core.Timestamp          `json:"created_at"`
}

// Estimate returns the stored estimate for a comparable metric
func (s *PerformanceSnapshot) Estimate(metric Metric) (MetricEstimate, error) {
	switch metric {
	case MetricF1:
		return s.F1, nil
	case MetricPrecision:
		return s.Precision, nil
	case MetricRecall:
		return s.Recall, nil
	case MetricFPR:
		return s.FPR, nil
	default:
		return MetricEstimate{}, core.NewUnsupportedMetricError(string(metric))
	}
}

// WarningCode represents structured warning types attached to evaluations
type WarningCode string

const (
	WarningLowSampleSize  WarningCode = "LOW_SAMPLE_SIZE" // N < 30
	WarningNoNegatives    WarningCode = "NO_NEGATIVES"    // FPR undefined on full data
	WarningNoPositives    WarningCode = "NO_POSITIVES"    // recall undefined on full data
	WarningAUCUnavailable WarningCode = "AUC_UNAVAILABLE" // scores missing or single class
	WarningRowsSkipped    WarningCode = "ROWS_SKIPPED"    // unparseable source rows dropped
)
