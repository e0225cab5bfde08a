// Package history persists completed run summaries to a local sqlite3
// database, generalized from the teacher's stresstest.Manager
// (database/sql over mattn/go-sqlite3, migrations run on open).
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// RunRecord is one completed load-test run's stored outcome.
type RunRecord struct {
	ID          int64
	StartedAt   time.Time
	CompletedAt time.Time
	SlaveCount  int
	DoneCount   int
	ErrorCount  int
	SummaryJSON string
}

// Store wraps a sqlite3 database holding run history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite3 database at path and
// runs pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run history migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts a completed run. Persistence failures here are
// best-effort: a history write failure never undoes a finished run, it
// is only logged by the caller.
func (s *Store) Record(startedAt, completedAt time.Time, slaveCount, doneCount, errorCount int, summary map[string]map[string]interface{}) (int64, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run summary: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO runs (started_at, completed_at, slave_count, done_count, error_count, summary_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, startedAt, completedAt, slaveCount, doneCount, errorCount, string(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run record: %w", err)
	}
	return result.LastInsertId()
}

// Get retrieves one run by ID.
func (s *Store) Get(id int64) (*RunRecord, error) {
	rec := &RunRecord{}
	err := s.db.QueryRow(`
		SELECT id, started_at, completed_at, slave_count, done_count, error_count, summary_json
		FROM runs WHERE id = ?
	`, id).Scan(&rec.ID, &rec.StartedAt, &rec.CompletedAt, &rec.SlaveCount, &rec.DoneCount, &rec.ErrorCount, &rec.SummaryJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent runs, newest first, bounded by limit.
func (s *Store) List(limit int) ([]*RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, completed_at, slave_count, done_count, error_count, summary_json
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec := &RunRecord{}
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.CompletedAt, &rec.SlaveCount, &rec.DoneCount, &rec.ErrorCount, &rec.SummaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a run by ID.
func (s *Store) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	return nil
}
