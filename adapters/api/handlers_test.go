package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"modelgate/app"
	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/verdict"
	"modelgate/internal/bootstrap"
	"modelgate/internal/degrade"
	"modelgate/internal/evaluate"
	"modelgate/internal/policy"
	"modelgate/internal/testkit"
)

func newTestServer(t *testing.T) (*Server, *testkit.MemoryLedger) {
	t.Helper()
	kit := testkit.NewTestKit()

	estimator, err := bootstrap.NewEstimator(kit.RNGAdapter(), 200, 0.95, nil)
	if err != nil {
		t.Fatalf("NewEstimator failed: %v", err)
	}
	pol, err := policy.NewPolicy(
		verdict.ThresholdConfig{MinF1Score: 0.5, MaxFPR: 0.05, ConfidenceLevel: 0.95}, nil)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	service := app.NewValidationService(
		kit.OutcomeSource(testkit.DefaultOutcomeConfig()),
		kit.Ledger(),
		evaluate.NewCalculator(estimator, nil),
		pol,
		degrade.NewDetector(nil),
		2,
		nil,
	)
	return NewServer(service, nil), kit.Ledger()
}

func postJSON(t *testing.T, server *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleValidate_HappyPath(t *testing.T) {
	server, _ := newTestServer(t)

	rec := postJSON(t, server, "/api/validations", ValidationRequestBody{
		ModelID:    "fraud-v1",
		Source:     "synthetic",
		WithScores: true,
		Seed:       42,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report app.ValidationReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Snapshot == nil {
		t.Fatal("expected snapshot in report")
	}
	if !report.Decision.Passes {
		t.Errorf("expected pass, violations: %v", report.Decision.Violations)
	}
}

func TestHandleValidate_MissingFields(t *testing.T) {
	server, _ := newTestServer(t)

	rec := postJSON(t, server, "/api/validations", ValidationRequestBody{Source: "synthetic"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing model_id: status = %d, want 400", rec.Code)
	}

	rec = postJSON(t, server, "/api/validations", ValidationRequestBody{ModelID: "fraud-v1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing source: status = %d, want 400", rec.Code)
	}
}

func TestHandleCompare(t *testing.T) {
	server, ledger := newTestServer(t)
	ctx := context.Background()

	baseline := &metrics.PerformanceSnapshot{
		ID:      core.SnapshotID("base-1"),
		ModelID: "fraud-v1",
		F1:      metrics.MetricEstimate{Value: 0.90, CILower: 0.88, CIUpper: 0.92},
	}
	candidate := &metrics.PerformanceSnapshot{
		ID:      core.SnapshotID("cand-1"),
		ModelID: "fraud-v1",
		F1:      metrics.MetricEstimate{Value: 0.80, CILower: 0.78, CIUpper: 0.82},
	}
	if err := ledger.StoreSnapshot(ctx, baseline); err != nil {
		t.Fatalf("StoreSnapshot failed: %v", err)
	}
	if err := ledger.StoreSnapshot(ctx, candidate); err != nil {
		t.Fatalf("StoreSnapshot failed: %v", err)
	}

	rec := postJSON(t, server, "/api/comparisons", ComparisonRequestBody{
		BaselineSnapshotID:  "base-1",
		CandidateSnapshotID: "cand-1",
		Metric:              string(metrics.MetricF1),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result verdict.DegradationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if !result.SignificantDegradation {
		t.Error("expected significant degradation")
	}

	// Unsupported metric is a caller error
	rec = postJSON(t, server, "/api/comparisons", ComparisonRequestBody{
		BaselineSnapshotID:  "base-1",
		CandidateSnapshotID: "cand-1",
		Metric:              "accuracy",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported metric: status = %d, want 400", rec.Code)
	}
}

func TestHandleGetSnapshot_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/missing", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleLatestSnapshot(t *testing.T) {
	server, ledger := newTestServer(t)
	ctx := context.Background()

	snapshot := &metrics.PerformanceSnapshot{
		ID:      core.SnapshotID("snap-1"),
		ModelID: "fraud-v1",
		F1:      metrics.MetricEstimate{Value: 0.9, CILower: 0.88, CIUpper: 0.92},
	}
	if err := ledger.StoreSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("StoreSnapshot failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/models/fraud-v1/snapshots/latest", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got metrics.PerformanceSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if got.ID != snapshot.ID {
		t.Errorf("id = %s, want %s", got.ID, snapshot.ID)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/models/unknown/snapshots/latest", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown model: status = %d, want 404", rec.Code)
	}
}
