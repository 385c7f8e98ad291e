package bootstrap

import (
	"context"
	"errors"
	"testing"

	"modelgate/domain/metrics"
	"modelgate/domain/outcome"
	"modelgate/internal/testkit"
)

func testLabelSet(t *testing.T) *outcome.LabelSet {
	t.Helper()
	n := 200
	truth := make([]bool, n)
	predicted := make([]bool, n)
	for i := 0; i < n; i++ {
		truth[i] = i%4 == 0
		predicted[i] = i%4 == 0 && i%20 != 0 || i%50 == 1
	}
	set, err := outcome.NewLabelSet(truth, predicted, nil)
	if err != nil {
		t.Fatalf("failed to build label set: %v", err)
	}
	return set
}

func TestEstimator_Determinism(t *testing.T) {
	ctx := context.Background()
	set := testLabelSet(t)

	run := func() metrics.MetricEstimate {
		estimator, err := NewEstimator(&testkit.RNGAdapter{}, 500, 0.95, nil)
		if err != nil {
			t.Fatalf("NewEstimator failed: %v", err)
		}
		estimate, err := estimator.Estimate(ctx, set, 42, metrics.MetricF1, metrics.ConfusionCounts.F1)
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}
		return estimate
	}

	first := run()
	for i := 0; i < 3; i++ {
		again := run()
		if again != first {
			t.Fatalf("run %d: same seed produced different estimate: %+v vs %+v", i, again, first)
		}
	}

	t.Logf("F1: %.4f [%.4f, %.4f]", first.Value, first.CILower, first.CIUpper)
}

func TestEstimator_DifferentSeedsDiffer(t *testing.T) {
	ctx := context.Background()
	set := testLabelSet(t)
	estimator, err := NewEstimator(&testkit.RNGAdapter{}, 500, 0.95, nil)
	if err != nil {
		t.Fatalf("NewEstimator failed: %v", err)
	}

	a, err := estimator.Estimate(ctx, set, 1, metrics.MetricF1, metrics.ConfusionCounts.F1)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	b, err := estimator.Estimate(ctx, set, 999, metrics.MetricF1, metrics.ConfusionCounts.F1)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	// Point estimates come from the full set and must agree; intervals
	// come from the resamples and should not
	if a.Value != b.Value {
		t.Errorf("point estimates should not depend on seed: %f vs %f", a.Value, b.Value)
	}
	if a.CILower == b.CILower && a.CIUpper == b.CIUpper {
		t.Errorf("different seeds produced identical intervals [%f, %f]", a.CILower, a.CIUpper)
	}
}

func TestEstimator_BoundsOrderedAndInRange(t *testing.T) {
	ctx := context.Background()
	set := testLabelSet(t)
	estimator, err := NewEstimator(&testkit.RNGAdapter{}, 1000, 0.95, nil)
	if err != nil {
		t.Fatalf("NewEstimator failed: %v", err)
	}

	fns := map[metrics.Metric]MetricFunc{
		metrics.MetricF1:        metrics.ConfusionCounts.F1,
		metrics.MetricPrecision: metrics.ConfusionCounts.Precision,
		metrics.MetricRecall:    metrics.ConfusionCounts.Recall,
		metrics.MetricFPR:       metrics.ConfusionCounts.FPR,
	}
	results, err := estimator.EstimateAll(ctx, set, 42, fns)
	if err != nil {
		t.Fatalf("EstimateAll failed: %v", err)
	}

	for name, estimate := range results {
		if estimate.CILower > estimate.CIUpper {
			t.Errorf("%s: ci_lower %f > ci_upper %f", name, estimate.CILower, estimate.CIUpper)
		}
		if estimate.CILower < 0 || estimate.CIUpper > 1 {
			t.Errorf("%s: interval [%f, %f] outside [0, 1]", name, estimate.CILower, estimate.CIUpper)
		}
		if estimate.ConfidenceLevel != 0.95 {
			t.Errorf("%s: confidence level %f, want 0.95", name, estimate.ConfidenceLevel)
		}
		if estimate.Bootstraps != 1000 {
			t.Errorf("%s: bootstraps %d, want 1000", name, estimate.Bootstraps)
		}
	}
}

func TestEstimator_SharedDrawPerIteration(t *testing.T) {
	// All metrics in one EstimateAll call must consume one index stream per
	// iteration: the recording RNG should see each iteration exactly once
	ctx := context.Background()
	set := testLabelSet(t)

	recorder := &testkit.RecordingRNG{}
	estimator, err := NewEstimator(recorder, 50, 0.95, nil)
	if err != nil {
		t.Fatalf("NewEstimator failed: %v", err)
	}

	fns := map[metrics.Metric]MetricFunc{
		metrics.MetricF1:        metrics.ConfusionCounts.F1,
		metrics.MetricPrecision: metrics.ConfusionCounts.Precision,
		metrics.MetricRecall:    metrics.ConfusionCounts.Recall,
		metrics.MetricFPR:       metrics.ConfusionCounts.FPR,
	}
	if _, err := estimator.EstimateAll(ctx, set, 42, fns); err != nil {
		t.Fatalf("EstimateAll failed: %v", err)
	}

	requests := recorder.Requests()
	if len(requests) != 50 {
		t.Fatalf("expected 50 iteration streams for 4 metrics, got %d", len(requests))
	}
	for i, req := range requests {
		if req.Iteration != i {
			t.Errorf("request %d: iteration %d, want %d", i, req.Iteration, i)
		}
		if req.Seed != 42 {
			t.Errorf("request %d: seed %d, want 42", i, req.Seed)
		}
	}
}

func TestEstimator_DegenerateResamplesStayFinite(t *testing.T) {
	// A tiny all-positive set forces resamples with zero negatives; the
	// fallback inside the metric functions must keep every score at 0
	ctx := context.Background()
	set, err := outcome.NewLabelSet(
		[]bool{true, true, true},
		[]bool{false, false, false},
		nil,
	)
	if err != nil {
		t.Fatalf("failed to build label set: %v", err)
	}

	estimator, err := NewEstimator(&testkit.RNGAdapter{}, 200, 0.95, nil)
	if err != nil {
		t.Fatalf("NewEstimator failed: %v", err)
	}
	estimate, err := estimator.Estimate(ctx, set, 42, metrics.MetricFPR, metrics.ConfusionCounts.FPR)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if estimate.Value != 0 || estimate.CILower != 0 || estimate.CIUpper != 0 {
		t.Errorf("expected (0, 0, 0), got (%f, %f, %f)",
			estimate.Value, estimate.CILower, estimate.CIUpper)
	}
}

func TestEstimator_ContextCancellation(t *testing.T) {
	set := testLabelSet(t)
	estimator, err := NewEstimator(&testkit.RNGAdapter{}, 10000, 0.95, nil)
	if err != nil {
		t.Fatalf("NewEstimator failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = estimator.Estimate(ctx, set, 42, metrics.MetricF1, metrics.ConfusionCounts.F1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewEstimator_RejectsBadParameters(t *testing.T) {
	if _, err := NewEstimator(&testkit.RNGAdapter{}, 0, 0.95, nil); err == nil {
		t.Error("expected error for zero iterations")
	}
	if _, err := NewEstimator(&testkit.RNGAdapter{}, 100, 1.5, nil); err == nil {
		t.Error("expected error for confidence outside (0, 1)")
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	data := []float64{1, 2, 3, 4}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{50, 2.5},
		{100, 4},
		{25, 1.75},
	}
	for _, tt := range tests {
		if got := percentile(data, tt.p); got != tt.want {
			t.Errorf("percentile(%v, %g) = %g, want %g", data, tt.p, got, tt.want)
		}
	}
}
