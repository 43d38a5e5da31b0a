package report

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS workflow_runs (
	run_id      TEXT PRIMARY KEY,
	base_url    TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	total       INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS workflow_step_results (
	run_id        TEXT NOT NULL REFERENCES workflow_runs(run_id),
	position      INTEGER NOT NULL,
	name          TEXT NOT NULL,
	status        TEXT NOT NULL,
	message       TEXT,
	error_code    TEXT,
	http_status   INTEGER,
	response_body TEXT,
	duration_ms   BIGINT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, position)
);`

const (
	insertRunQuery = `INSERT INTO workflow_runs (run_id, base_url, started_at, finished_at, total, passed, failed, skipped)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertStepQuery = `INSERT INTO workflow_step_results (run_id, position, name, status, message, error_code, http_status, response_body, duration_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
)

// PostgresSink stores one workflow_runs row and one row per step.
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Name() string { return "postgres" }

// EnsureSchema creates the report tables when they are missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create report tables: %w", err)
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, rep *Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertRunQuery,
		rep.RunID, rep.BaseURL, rep.StartedAt, rep.FinishedAt,
		rep.Summary.Total, rep.Summary.Passed, rep.Summary.Failed, rep.Summary.Skipped,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, rec := range rep.Results {
		if _, err := tx.ExecContext(ctx, insertStepQuery,
			rep.RunID, i, rec.Name, string(rec.Status), nullString(rec.Message), nullString(rec.ErrorCode),
			nullInt(rec.HTTPStatus), nullString(rec.ResponseBody), rec.DurationMs, rec.StartedAt,
		); err != nil {
			return fmt.Errorf("failed to insert step %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
