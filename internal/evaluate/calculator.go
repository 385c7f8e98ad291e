package evaluate

import (
	"context"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/outcome"
	"modelgate/internal/bootstrap"

	"go.uber.org/zap"
)

// LowSampleThreshold is the sample count below which a snapshot carries the
// low-sample-size warning flag.
const LowSampleThreshold = 30

// EvaluationRequest carries everything one evaluation needs. The seed is
// explicit per call; the calculator holds no mutable evaluation state.
type EvaluationRequest struct {
	ModelID core.ModelID
	Set     *outcome.LabelSet
	Seed    int64
}

// Calculator turns a labeled outcome set into a performance snapshot:
// confusion counts, four bootstrap-estimated ratio metrics, and an optional
// AUC-ROC when continuous scores accompany the labels.
type Calculator struct {
	estimator *bootstrap.Estimator
	logger    *zap.Logger
}

// NewCalculator creates a calculator around a configured estimator
func NewCalculator(estimator *bootstrap.Estimator, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{estimator: estimator, logger: logger}
}

// Evaluate computes a full performance snapshot for one labeled outcome set.
// Ratio metrics are bootstrapped over one shared resampling pass; AUC-ROC is
// computed once from continuous scores and never bootstrapped.
func (c *Calculator) Evaluate(ctx context.Context, req EvaluationRequest) (*metrics.PerformanceSnapshot, error) {
	if req.Set == nil {
		return nil, core.ErrEmptyDataset
	}
	set := req.Set
	n := set.Len()

	c.logger.Info("calculating_performance_metrics",
		zap.String("model_id", req.ModelID.String()),
		zap.Int("sample_count", n),
		zap.Int64("seed", req.Seed),
	)

	lowSample := n < LowSampleThreshold
	if lowSample {
		c.logger.Warn("small_sample_size",
			zap.String("model_id", req.ModelID.String()),
			zap.Int("sample_count", n),
			zap.Int("threshold", LowSampleThreshold),
		)
	}

	counts := CountSet(set)

	fns := map[metrics.Metric]bootstrap.MetricFunc{
		metrics.MetricF1:        metrics.ConfusionCounts.F1,
		metrics.MetricPrecision: metrics.ConfusionCounts.Precision,
		metrics.MetricRecall:    metrics.ConfusionCounts.Recall,
	}
	// With zero negatives in the full set FPR is undefined everywhere, so
	// resampling would only produce B copies of the fallback. Skip it.
	bootstrapFPR := set.Negatives() > 0
	if bootstrapFPR {
		fns[metrics.MetricFPR] = metrics.ConfusionCounts.FPR
	}

	estimates, err := c.estimator.EstimateAll(ctx, set, req.Seed, fns)
	if err != nil {
		return nil, err
	}

	fpr := metrics.Degenerate(c.estimator.Confidence(), c.estimator.Iterations())
	if bootstrapFPR {
		fpr = estimates[metrics.MetricFPR]
	} else {
		c.logger.Warn("fpr_degenerate",
			zap.String("model_id", req.ModelID.String()),
			zap.String("reason", "no negative samples"),
		)
	}

	snapshot := &metrics.PerformanceSnapshot{
		ID:            core.SnapshotID(core.NewID()),
		ModelID:       req.ModelID,
		F1:            estimates[metrics.MetricF1],
		Precision:     estimates[metrics.MetricPrecision],
		Recall:        estimates[metrics.MetricRecall],
		FPR:           fpr,
		Counts:        counts,
		TotalSamples:  n,
		Seed:          req.Seed,
		LowSampleSize: lowSample,
		Fingerprint:   set.Fingerprint(),
		CreatedAt:     core.Now(),
	}

	if auc, ok := computeAUC(set); ok {
		snapshot.AUCROC = &auc
		c.logger.Info("auc_calculated",
			zap.String("model_id", req.ModelID.String()),
			zap.Float64("auc_roc", auc),
		)
	}

	c.logger.Info("f1_calculated",
		zap.String("model_id", req.ModelID.String()),
		zap.Float64("f1_score", snapshot.F1.Value),
		zap.Float64("ci_lower", snapshot.F1.CILower),
		zap.Float64("ci_upper", snapshot.F1.CIUpper),
	)
	c.logger.Info("fpr_calculated",
		zap.String("model_id", req.ModelID.String()),
		zap.Float64("false_positive_rate", snapshot.FPR.Value),
		zap.Float64("ci_lower", snapshot.FPR.CILower),
		zap.Float64("ci_upper", snapshot.FPR.CIUpper),
	)

	return snapshot, nil
}
