package history

import (
	"database/sql"
	"fmt"
)

// migration is one forward step in the history schema's evolution,
// generalized from the teacher's migrations.Migration.
type migration struct {
	Version int
	Name    string
	Up      string
}

var allMigrations = []migration{
	{
		Version: 1,
		Name:    "Create runs table",
		Up: `
			CREATE TABLE IF NOT EXISTS runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				started_at TIMESTAMP NOT NULL,
				completed_at TIMESTAMP NOT NULL,
				slave_count INTEGER NOT NULL,
				done_count INTEGER NOT NULL,
				error_count INTEGER NOT NULL,
				summary_json TEXT NOT NULL
			);
		`,
	},
	{
		Version: 2,
		Name:    "Index runs by start time",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
		`,
	},
}

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY
		);
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range allMigrations {
		if m.Version <= current {
			continue
		}
		if _, err := db.Exec(m.Up); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read current schema version: %w", err)
	}
	return version, nil
}
