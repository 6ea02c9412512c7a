// Package runlog keeps an audit trail of import runs in a local SQLite
// database: how many rows each run read, dropped, merged, and fixed.
// The trail exists for traceability across separate contact and
// reservation runs; failures here are logged and never block a run.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one completed import run.
type Entry struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	Workflow    string    `json:"workflow"`
	OperatorID  string    `json:"operatorId"`
	FileCount   int       `json:"fileCount"`
	TotalRows   int       `json:"totalRows"`
	DroppedRows int       `json:"droppedRows"`
	MergedRows  int       `json:"mergedRows"`
	FixedFields int       `json:"fixedFields"`
	IssueCount  int       `json:"issueCount"`
	ReadyCount  int       `json:"readyCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store wraps the SQLite handle. A nil *Store is valid and records
// nothing, so callers do not guard every call.
type Store struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS import_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	workflow TEXT NOT NULL,
	operator_id TEXT NOT NULL,
	file_count INTEGER NOT NULL DEFAULT 0,
	total_rows INTEGER NOT NULL DEFAULT 0,
	dropped_rows INTEGER NOT NULL DEFAULT 0,
	merged_rows INTEGER NOT NULL DEFAULT 0,
	fixed_fields INTEGER NOT NULL DEFAULT 0,
	issue_count INTEGER NOT NULL DEFAULT 0,
	ready_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_import_runs_session ON import_runs(session_id);
`

// Open creates or opens the run database at path and ensures the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run log schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one run entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs
			(session_id, workflow, operator_id, file_count, total_rows, dropped_rows, merged_rows, fixed_fields, issue_count, ready_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Workflow, e.OperatorID, e.FileCount, e.TotalRows, e.DroppedRows, e.MergedRows, e.FixedFields, e.IssueCount, e.ReadyCount,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, workflow, operator_id, file_count, total_rows, dropped_rows, merged_rows, fixed_fields, issue_count, ready_count, created_at
		FROM import_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Workflow, &e.OperatorID, &e.FileCount, &e.TotalRows, &e.DroppedRows, &e.MergedRows, &e.FixedFields, &e.IssueCount, &e.ReadyCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
