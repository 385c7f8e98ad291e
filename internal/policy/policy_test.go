package policy

import (
	"strings"
	"testing"

	"modelgate/domain/metrics"
	"modelgate/domain/verdict"
)

func snapshotWith(f1, f1Lower, fpr, fprUpper float64) *metrics.PerformanceSnapshot {
	return &metrics.PerformanceSnapshot{
		ID:      "snap-1",
		ModelID: "fraud-v1",
		F1: metrics.MetricEstimate{
			Value: f1, CILower: f1Lower, CIUpper: f1 + 0.02, ConfidenceLevel: 0.95,
		},
		FPR: metrics.MetricEstimate{
			Value: fpr, CILower: 0, CIUpper: fprUpper, ConfidenceLevel: 0.95,
		},
	}
}

func newTestPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy(verdict.DefaultThresholdConfig(), nil)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}
	return p
}

func TestPolicy_PassesWhenAllRulesClear(t *testing.T) {
	p := newTestPolicy(t)

	decision := p.Evaluate(snapshotWith(0.90, 0.88, 0.005, 0.008))
	if !decision.Passes {
		t.Errorf("expected pass, got violations: %v", decision.Violations)
	}
	if len(decision.Violations) != 0 {
		t.Errorf("expected no violations, got %v", decision.Violations)
	}
}

func TestPolicy_CILowerBoundViolation(t *testing.T) {
	p := newTestPolicy(t)

	// Headline F1 clears the bar but its lower bound does not
	decision := p.Evaluate(snapshotWith(0.90, 0.80, 0.005, 0.008))
	if decision.Passes {
		t.Error("expected failure on F1 CI lower bound")
	}
	if len(decision.Violations) != 1 {
		t.Fatalf("expected exactly one violation, got %v", decision.Violations)
	}
	if !strings.Contains(decision.Violations[0], "F1 CI lower bound") {
		t.Errorf("violation should name the F1 CI lower bound, got %q", decision.Violations[0])
	}
}

func TestPolicy_ReportsEveryViolation(t *testing.T) {
	p := newTestPolicy(t)

	// Everything fails: all four rules must appear, in fixed order
	decision := p.Evaluate(snapshotWith(0.70, 0.65, 0.05, 0.08))
	if decision.Passes {
		t.Error("expected failure")
	}
	if len(decision.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(decision.Violations), decision.Violations)
	}

	wantOrder := []string{
		"F1 score",
		"FPR ",
		"F1 CI lower bound",
		"FPR CI upper bound",
	}
	for i, prefix := range wantOrder {
		if !strings.HasPrefix(decision.Violations[i], prefix) {
			t.Errorf("violation %d = %q, want prefix %q", i, decision.Violations[i], prefix)
		}
	}
}

func TestPolicy_ViolationWording(t *testing.T) {
	p := newTestPolicy(t)

	decision := p.Evaluate(snapshotWith(0.8123, 0.86, 0.005, 0.008))
	if len(decision.Violations) != 1 {
		t.Fatalf("expected one violation, got %v", decision.Violations)
	}
	want := "F1 score 0.8123 below threshold 0.85"
	if decision.Violations[0] != want {
		t.Errorf("violation = %q, want %q", decision.Violations[0], want)
	}
}

func TestPolicy_BoundaryValuesPass(t *testing.T) {
	p := newTestPolicy(t)

	// Thresholds are inclusive: exactly at the line still passes
	decision := p.Evaluate(snapshotWith(0.85, 0.85, 0.01, 0.01))
	if !decision.Passes {
		t.Errorf("boundary values should pass, got %v", decision.Violations)
	}
}

func TestNewPolicy_RejectsInvalidConfig(t *testing.T) {
	bad := verdict.ThresholdConfig{MinF1Score: 1.5, MaxFPR: 0.01, ConfidenceLevel: 0.95}
	if _, err := NewPolicy(bad, nil); err == nil {
		t.Error("expected error for out-of-range threshold")
	}
}
