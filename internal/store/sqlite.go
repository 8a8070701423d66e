package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// nullTime maps the zero time to NULL so open-ended rows round-trip
// through sql.NullTime.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Store provides SQLite-backed run history
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new Store, opening the SQLite database and running migrations
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("store initialized", "path", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// CreateRun inserts a new Run and sets its ID. An unfinished run stores a
// NULL end_time, not the zero time.
func (s *Store) CreateRun(run *Run) error {
	const query = `
		INSERT INTO runs (
			operation, dry_run, start_time, end_time, discovered, matched,
			acted, failed, skipped_servers, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(
		query,
		run.Operation, run.DryRun, run.StartTime, nullTime(run.EndTime),
		run.Discovered, run.Matched, run.Acted, run.Failed,
		run.SkippedServers, run.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// UpdateRun updates an existing Run by ID
func (s *Store) UpdateRun(run *Run) error {
	const query = `
		UPDATE runs SET
			operation = ?, dry_run = ?, start_time = ?, end_time = ?,
			discovered = ?, matched = ?, acted = ?, failed = ?,
			skipped_servers = ?, status = ?
		WHERE id = ?
	`

	_, err := s.db.Exec(
		query,
		run.Operation, run.DryRun, run.StartTime, nullTime(run.EndTime),
		run.Discovered, run.Matched, run.Acted, run.Failed,
		run.SkippedServers, run.Status, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// AddRunError records one per-unit failure for a run
func (s *Store) AddRunError(runID int64, server, unit, reason string) error {
	const query = `
		INSERT INTO run_errors (run_id, server, unit, reason)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, runID, server, unit, reason); err != nil {
		return fmt.Errorf("failed to insert run error: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
		SELECT id, operation, dry_run, start_time, end_time, discovered,
		       matched, acted, failed, skipped_servers, status
		FROM runs
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var endTime sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.Operation, &r.DryRun, &r.StartTime, &endTime,
			&r.Discovered, &r.Matched, &r.Acted, &r.Failed,
			&r.SkippedServers, &r.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if endTime.Valid {
			r.EndTime = endTime.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunErrors returns the recorded failures for one run
func (s *Store) RunErrors(runID int64) ([]RunError, error) {
	const query = `
		SELECT id, run_id, server, unit, COALESCE(reason, ''), created_at
		FROM run_errors
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run errors: %w", err)
	}
	defer rows.Close()

	var errs []RunError
	for rows.Next() {
		var e RunError
		if err := rows.Scan(&e.ID, &e.RunID, &e.Server, &e.Unit, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}
