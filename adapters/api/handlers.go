package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"modelgate/app"
	"modelgate/domain/core"
	"modelgate/domain/metrics"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ValidationRequestBody is the JSON payload for POST /api/validations
type ValidationRequestBody struct {
	ModelID         string `json:"model_id"`
	Source          string `json:"source"`
	WithScores      bool   `json:"with_scores"`
	Seed            int64  `json:"seed"`
	CompareBaseline bool   `json:"compare_baseline"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

// ComparisonRequestBody is the JSON payload for POST /api/comparisons
type ComparisonRequestBody struct {
	BaselineSnapshotID  string `json:"baseline_snapshot_id"`
	CandidateSnapshotID string `json:"candidate_snapshot_id"`
	Metric              string `json:"metric"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var body ValidationRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	modelID, err := core.ParseModelID(body.ModelID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Source == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}

	report, err := s.service.Validate(r.Context(), app.ValidationRequest{
		ModelID:         modelID,
		Source:          body.Source,
		WithScores:      body.WithScores,
		Seed:            body.Seed,
		CompareBaseline: body.CompareBaseline,
		Timeout:         time.Duration(body.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var body ComparisonRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	baselineID, err := core.ParseSnapshotID(body.BaselineSnapshotID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	candidateID, err := core.ParseSnapshotID(body.CandidateSnapshotID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Compare(r.Context(), baselineID, candidateID, metrics.Metric(body.Metric))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshotID, err := core.ParseSnapshotID(chi.URLParam(r, "snapshotID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, decision, err := s.service.Snapshot(r.Context(), snapshotID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": snapshot,
		"decision": decision,
	})
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	modelID, err := core.ParseModelID(chi.URLParam(r, "modelID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.service.LatestSnapshot(r.Context(), modelID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// writeServiceError maps domain errors onto HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	case core.IsInputValidationError(err), core.IsConfigError(err),
		errors.Is(err, core.ErrUnsupportedMetric):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
