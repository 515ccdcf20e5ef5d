package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-pipeparams/pkg/params"
)

const createOverridesTable = `
CREATE TABLE IF NOT EXISTS overrides (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore keeps overrides in a single-table SQLite database. It suits
// deployments where the settings file lives next to other project state in
// one database rather than loose YAML files.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the overrides table exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("store: database path is required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(createOverridesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create overrides table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads every persisted override and replays it through Registry.Set.
func (s *SQLiteStore) Load(ctx context.Context, reg *params.Registry) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM overrides`)
	if err != nil {
		return fmt.Errorf("store: query overrides: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("store: scan override: %w", err)
		}
		raw[key] = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: iterate overrides: %w", err)
	}
	return applyOverrides(reg, raw)
}

// Save replaces the persisted set with the registry's current overrides in
// one transaction.
func (s *SQLiteStore) Save(ctx context.Context, reg *params.Registry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM overrides`); err != nil {
		return fmt.Errorf("store: clear overrides: %w", err)
	}
	for key, value := range serializeOverrides(reg) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO overrides (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("store: insert override %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit overrides: %w", err)
	}
	return nil
}
