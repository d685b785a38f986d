// Package history records lint runs in a SQLite database so failures can be
// tracked across runs.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/jenkins-job-linter/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// RunSummary is one stored run
type RunSummary struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	FileCount int
	Passed    int
	Failed    int
	Skipped   int
	Errored   int
}

// LinterFailures counts FAIL outcomes of one linter
type LinterFailures struct {
	Linter   string
	Failures int
}

// Store manages the history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (or creates) the database at dbPath and applies the schema.
// ":memory:" opens a private in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps an in-memory database alive and shared
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement, retrying with backoff while the database is locked
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores run with every outcome and load error. A run without an
// ID is assigned one, written back to run.ID.
func (s *Store) RecordRun(ctx context.Context, run *models.RunReport) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, started_at, duration_ms, success, file_count, passed, failed, skipped, errored)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC(),
		run.Duration.Milliseconds(),
		run.Success(),
		len(run.Files),
		run.Passed(),
		run.Failed(),
		run.Skipped(),
		run.Errored(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	outcomeStmt, err := tx.PrepareContext(ctx, `INSERT INTO outcomes (run_id, path, linter, result, explanation) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer outcomeStmt.Close()

	for _, f := range run.Files {
		if f.Error != "" {
			if _, err := tx.ExecContext(ctx, `INSERT INTO file_errors (run_id, path, error) VALUES (?, ?, ?)`, run.ID, f.Path, f.Error); err != nil {
				return fmt.Errorf("insert file error: %w", err)
			}
			continue
		}
		for _, o := range f.Outcomes {
			if _, err := outcomeStmt.ExecContext(ctx, run.ID, f.Path, o.Linter, o.Result.String(), o.Explanation); err != nil {
				return fmt.Errorf("insert outcome: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first. limit <= 0 returns all runs.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, started_at, duration_ms, success, file_count, passed, failed, skipped, errored
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &durationMs, &r.Success, &r.FileCount, &r.Passed, &r.Failed, &r.Skipped, &r.Errored); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// TopFailures returns linters ordered by how many FAIL outcomes they have across
// the stored runs, at most limit entries.
func (s *Store) TopFailures(ctx context.Context, limit int) ([]LinterFailures, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT linter, COUNT(*) AS failures
		FROM outcomes WHERE result = 'FAIL'
		GROUP BY linter ORDER BY failures DESC, linter ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []LinterFailures
	for rows.Next() {
		var lf LinterFailures
		if err := rows.Scan(&lf.Linter, &lf.Failures); err != nil {
			return nil, fmt.Errorf("scan failures: %w", err)
		}
		out = append(out, lf)
	}
	return out, rows.Err()
}

// Prune deletes all but the keep most recent runs and returns how many were
// removed. keep <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id NOT IN
		(SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return result.RowsAffected()
}
