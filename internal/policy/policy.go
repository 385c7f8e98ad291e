package policy

import (
	"fmt"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/verdict"

	"go.uber.org/zap"
)

// Policy evaluates performance snapshots against deployment thresholds.
// Thresholds are constructor-injected; there is no ambient configuration.
type Policy struct {
	cfg    verdict.ThresholdConfig
	logger *zap.Logger
}

// NewPolicy creates a threshold policy with a validated config
func NewPolicy(cfg verdict.ThresholdConfig, logger *zap.Logger) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{cfg: cfg, logger: logger}, nil
}

// Config returns the injected threshold configuration
func (p *Policy) Config() verdict.ThresholdConfig { return p.cfg }

// Evaluate checks a snapshot against all four deployment rules and reports
// every violation. The CI-bound rules are the conservative backstop: a model
// whose point estimate clears the bar only by sampling luck still fails on
// the bound its interval cannot defend.
//
// Rules, in fixed reporting order:
//  1. point F1 >= MinF1Score
//  2. point FPR <= MaxFPR
//  3. F1 CI lower bound >= MinF1Score
//  4. FPR CI upper bound <= MaxFPR
func (p *Policy) Evaluate(snapshot *metrics.PerformanceSnapshot) verdict.Decision {
	var violations []string

	if snapshot.F1.Value < p.cfg.MinF1Score {
		violations = append(violations, fmt.Sprintf(
			"F1 score %.4f below threshold %g", snapshot.F1.Value, p.cfg.MinF1Score))
	}
	if snapshot.FPR.Value > p.cfg.MaxFPR {
		violations = append(violations, fmt.Sprintf(
			"FPR %.4f exceeds threshold %g", snapshot.FPR.Value, p.cfg.MaxFPR))
	}
	if snapshot.F1.CILower < p.cfg.MinF1Score {
		violations = append(violations, fmt.Sprintf(
			"F1 CI lower bound %.4f below threshold %g", snapshot.F1.CILower, p.cfg.MinF1Score))
	}
	if snapshot.FPR.CIUpper > p.cfg.MaxFPR {
		violations = append(violations, fmt.Sprintf(
			"FPR CI upper bound %.4f exceeds threshold %g", snapshot.FPR.CIUpper, p.cfg.MaxFPR))
	}

	passes := len(violations) == 0
	if !passes {
		p.logger.Warn("metrics_below_threshold",
			zap.String("model_id", snapshot.ModelID.String()),
			zap.String("snapshot_id", snapshot.ID.String()),
			zap.Strings("violations", violations),
		)
	} else {
		p.logger.Info("thresholds_met",
			zap.String("model_id", snapshot.ModelID.String()),
			zap.String("snapshot_id", snapshot.ID.String()),
		)
	}

	return verdict.Decision{
		Passes:      passes,
		Violations:  violations,
		Config:      p.cfg,
		EvaluatedAt: core.Now(),
	}
}
