package postgres

import (
	"context"

	apperrors "modelgate/internal/errors"

	"github.com/jmoiron/sqlx"
)

// schema holds the ledger tables. Statements are idempotent so startup can
// run them unconditionally.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS performance_snapshots (
		id TEXT PRIMARY KEY,
		model_id TEXT NOT NULL,
		estimates JSONB NOT NULL,
		auc_roc DOUBLE PRECISION,
		confusion_counts JSONB NOT NULL,
		total_samples INTEGER NOT NULL,
		seed BIGINT NOT NULL,
		low_sample_size BOOLEAN NOT NULL DEFAULT FALSE,
		dataset_fingerprint TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_model_created
		ON performance_snapshots (model_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS threshold_decisions (
		snapshot_id TEXT PRIMARY KEY REFERENCES performance_snapshots(id),
		passes BOOLEAN NOT NULL,
		violations JSONB NOT NULL,
		config JSONB NOT NULL,
		evaluated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS degradation_comparisons (
		id TEXT PRIMARY KEY,
		baseline_snapshot_id TEXT NOT NULL REFERENCES performance_snapshots(id),
		candidate_snapshot_id TEXT NOT NULL REFERENCES performance_snapshots(id),
		metric TEXT NOT NULL,
		significant_degradation BOOLEAN NOT NULL,
		result JSONB NOT NULL,
		compared_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the ledger schema if it does not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return apperrors.StorageError("failed to apply ledger schema", err)
		}
	}
	return nil
}
