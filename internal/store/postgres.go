// Package store persists extraction results to Postgres.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"voxtract/internal/results"
)

const schema = `
CREATE TABLE IF NOT EXISTS extraction_results (
	id          BIGSERIAL PRIMARY KEY,
	case_id     TEXT        NOT NULL,
	feature_key TEXT        NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertResult = `
INSERT INTO extraction_results (case_id, feature_key, value)
VALUES (:case_id, :feature_key, :value)`

type resultRow struct {
	CaseID     string  `db:"case_id"`
	FeatureKey string  `db:"feature_key"`
	Value      float64 `db:"value"`
}

// Recorder writes the numeric entries of extraction runs.
type Recorder struct {
	db *sqlx.DB
}

func NewRecorder(dsn string) (*Recorder, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to results database: %w", err)
	}
	return &Recorder{db: db}, nil
}

// EnsureSchema creates the results table when missing.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure results schema: %w", err)
	}
	return nil
}

// Record stores every numeric entry of res under caseID. Descriptive
// diagnostics values are skipped.
func (r *Recorder) Record(ctx context.Context, caseID string, res *results.Results) error {
	rows := collectRows(caseID, res)
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin results transaction: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insertResult, row); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert result %s: %w", row.FeatureKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	return nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

func collectRows(caseID string, res *results.Results) []resultRow {
	rows := make([]resultRow, 0, res.Len())
	res.Each(func(key string, value interface{}) bool {
		if f, ok := value.(float64); ok {
			rows = append(rows, resultRow{CaseID: caseID, FeatureKey: key, Value: f})
		}
		return true
	})
	return rows
}
