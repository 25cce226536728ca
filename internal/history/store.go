// Package history records the property updates modsync applies, one row
// per changed property per run, in a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

// Change is one property update applied by a run.
type Change struct {
	RunID       string    `json:"run_id"`
	Time        time.Time `json:"time"`
	Property    string    `json:"property"`
	Old         string    `json:"old"`
	New         string    `json:"new"`
	Coordinates string    `json:"coordinates,omitempty"`
	// File is the properties file the change was written to.
	File string `json:"file"`
}

// Store persists changes in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS changes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			ts          TEXT NOT NULL,
			file        TEXT NOT NULL,
			property    TEXT NOT NULL,
			old_value   TEXT NOT NULL,
			new_value   TEXT NOT NULL,
			coordinates TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_changes_run ON changes(run_id);
		CREATE INDEX IF NOT EXISTS idx_changes_ts ON changes(ts);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// Record stores the changes of one run atomically. Changes without a time
// are stamped with the current time.
func (s *Store) Record(runID string, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO changes (run_id, ts, file, property, old_value, new_value, coordinates)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range changes {
		ts := c.Time
		if ts.IsZero() {
			ts = now
		}
		if _, err := stmt.Exec(runID, ts.UTC().Format(time.RFC3339Nano), c.File, c.Property, c.Old, c.New, c.Coordinates); err != nil {
			return fmt.Errorf("inserting change %s: %w", c.Property, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing changes: %w", err)
	}
	return nil
}

// Recent returns up to limit changes, newest first. A limit of zero or less
// returns every change.
func (s *Store) Recent(limit int) ([]Change, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT run_id, ts, file, property, old_value, new_value, coordinates
		FROM changes ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var c Change
		var ts string
		if err := rows.Scan(&c.RunID, &ts, &c.File, &c.Property, &c.Old, &c.New, &c.Coordinates); err != nil {
			return nil, fmt.Errorf("scanning change: %w", err)
		}
		if c.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", ts, err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
