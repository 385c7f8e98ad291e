package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"modelgate/domain/core"
	"modelgate/domain/metrics"
	"modelgate/domain/verdict"
	"modelgate/ports"

	apperrors "modelgate/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Ledger implements ports.LedgerPort on PostgreSQL. Snapshots, decisions,
// and comparisons are audit rows; estimate payloads are stored as JSONB so
// the schema survives added metrics.
type Ledger struct {
	db *sqlx.DB
}

// NewLedger creates a PostgreSQL validation ledger
func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// StoreSnapshot persists one performance snapshot
func (l *Ledger) StoreSnapshot(ctx context.Context, snapshot *metrics.PerformanceSnapshot) error {
	estimatesJSON, err := json.Marshal(map[string]metrics.MetricEstimate{
		string(metrics.MetricF1):        snapshot.F1,
		string(metrics.MetricPrecision): snapshot.Precision,
		string(metrics.MetricRecall):    snapshot.Recall,
		string(metrics.MetricFPR):       snapshot.FPR,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to encode estimates")
	}
	countsJSON, err := json.Marshal(snapshot.Counts)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode confusion counts")
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO performance_snapshots (
			id, model_id, estimates, auc_roc, confusion_counts,
			total_samples, seed, low_sample_size, dataset_fingerprint, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		snapshot.ID.String(), snapshot.ModelID.String(), estimatesJSON, snapshot.AUCROC,
		countsJSON, snapshot.TotalSamples, snapshot.Seed, snapshot.LowSampleSize,
		snapshot.Fingerprint.String(), snapshot.CreatedAt.Time())
	if err != nil {
		return apperrors.StorageError("failed to store snapshot", err)
	}
	return nil
}

// StoreDecision persists the threshold decision for a snapshot
func (l *Ledger) StoreDecision(ctx context.Context, snapshotID core.SnapshotID, decision *verdict.Decision) error {
	violationsJSON, err := json.Marshal(decision.Violations)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode violations")
	}
	configJSON, err := json.Marshal(decision.Config)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode threshold config")
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO threshold_decisions (
			snapshot_id, passes, violations, config, evaluated_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (snapshot_id) DO UPDATE SET
			passes = EXCLUDED.passes,
			violations = EXCLUDED.violations,
			config = EXCLUDED.config,
			evaluated_at = EXCLUDED.evaluated_at`,
		snapshotID.String(), decision.Passes, violationsJSON, configJSON,
		decision.EvaluatedAt.Time())
	if err != nil {
		return apperrors.StorageError("failed to store decision", err)
	}
	return nil
}

// StoreComparison persists one degradation comparison
func (l *Ledger) StoreComparison(ctx context.Context, comparison *verdict.DegradationResult, baselineID, candidateID core.SnapshotID) error {
	payload, err := json.Marshal(comparison)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode comparison")
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO degradation_comparisons (
			id, baseline_snapshot_id, candidate_snapshot_id, metric,
			significant_degradation, result, compared_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		core.NewID().String(), baselineID.String(), candidateID.String(),
		string(comparison.Metric), comparison.SignificantDegradation, payload,
		comparison.ComparedAt.Time())
	if err != nil {
		return apperrors.StorageError("failed to store comparison", err)
	}
	return nil
}

// GetSnapshot loads one snapshot by ID
func (l *Ledger) GetSnapshot(ctx context.Context, id core.SnapshotID) (*metrics.PerformanceSnapshot, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, model_id, estimates, auc_roc, confusion_counts,
		       total_samples, seed, low_sample_size, dataset_fingerprint, created_at
		FROM performance_snapshots
		WHERE id = $1`, id.String())
	return scanSnapshot(row)
}

// GetLatestSnapshot loads the newest snapshot for a model
func (l *Ledger) GetLatestSnapshot(ctx context.Context, modelID core.ModelID) (*metrics.PerformanceSnapshot, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, model_id, estimates, auc_roc, confusion_counts,
		       total_samples, seed, low_sample_size, dataset_fingerprint, created_at
		FROM performance_snapshots
		WHERE model_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, modelID.String())
	return scanSnapshot(row)
}

// ListSnapshots returns stored snapshots, newest first
func (l *Ledger) ListSnapshots(ctx context.Context, filters ports.SnapshotFilters) ([]*metrics.PerformanceSnapshot, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, model_id, estimates, auc_roc, confusion_counts,
		       total_samples, seed, low_sample_size, dataset_fingerprint, created_at
		FROM performance_snapshots`
	args := []interface{}{}
	if filters.ModelID != nil {
		query += ` WHERE model_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, filters.ModelID.String(), limit, filters.Offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, filters.Offset)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StorageError("failed to list snapshots", err)
	}
	defer rows.Close()

	var results []*metrics.PerformanceSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, snapshot)
	}
	return results, rows.Err()
}

// GetDecision loads the stored decision for a snapshot
func (l *Ledger) GetDecision(ctx context.Context, snapshotID core.SnapshotID) (*verdict.Decision, error) {
	var passes bool
	var violationsJSON, configJSON []byte
	var evaluatedAt time.Time

	err := l.db.QueryRowContext(ctx, `
		SELECT passes, violations, config, evaluated_at
		FROM threshold_decisions
		WHERE snapshot_id = $1`, snapshotID.String()).
		Scan(&passes, &violationsJSON, &configJSON, &evaluatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("decision for snapshot", snapshotID.String())
	}
	if err != nil {
		return nil, apperrors.StorageError("failed to load decision", err)
	}

	decision := &verdict.Decision{
		Passes:      passes,
		EvaluatedAt: core.NewTimestamp(evaluatedAt),
	}
	if err := json.Unmarshal(violationsJSON, &decision.Violations); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode violations")
	}
	if err := json.Unmarshal(configJSON, &decision.Config); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode threshold config")
	}
	return decision, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (*metrics.PerformanceSnapshot, error) {
	var id, modelID, fingerprint string
	var estimatesJSON, countsJSON []byte
	var aucROC *float64
	var totalSamples int
	var seed int64
	var lowSampleSize bool
	var createdAt time.Time

	err := row.Scan(&id, &modelID, &estimatesJSON, &aucROC, &countsJSON,
		&totalSamples, &seed, &lowSampleSize, &fingerprint, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, apperrors.StorageError("failed to load snapshot", err)
	}

	var estimates map[string]metrics.MetricEstimate
	if err := json.Unmarshal(estimatesJSON, &estimates); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode estimates")
	}
	var counts metrics.ConfusionCounts
	if err := json.Unmarshal(countsJSON, &counts); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode confusion counts")
	}

	return &metrics.PerformanceSnapshot{
		ID:            core.SnapshotID(id),
		ModelID:       core.ModelID(modelID),
		F1:            estimates[string(metrics.MetricF1)],
		Precision:     estimates[string(metrics.MetricPrecision)],
		Recall:        estimates[string(metrics.MetricRecall)],
		FPR:           estimates[string(metrics.MetricFPR)],
		AUCROC:        aucROC,
		Counts:        counts,
		TotalSamples:  totalSamples,
		Seed:          seed,
		LowSampleSize: lowSampleSize,
		Fingerprint:   core.DatasetFingerprint(fingerprint),
		CreatedAt:     core.NewTimestamp(createdAt),
	}, nil
}
