// Package store persists the small client-local state (favorites, alerts,
// preferences) across restarts. Everything is JSON in a local SQLite file;
// price data itself is never persisted, it is rebuilt per upload.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pricewatch-service/internal/pricing/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS alerts (
	id      TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);`

type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveAlerts replaces the stored alert list wholesale.
func (s *Store) SaveAlerts(alerts []model.Alert) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save alerts: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM alerts`); err != nil {
		return fmt.Errorf("store: save alerts: %w", err)
	}
	for _, a := range alerts {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("store: save alerts: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO alerts (id, payload) VALUES (?, ?)`, a.ID, string(payload)); err != nil {
			return fmt.Errorf("store: save alerts: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) LoadAlerts() ([]model.Alert, error) {
	rows, err := s.db.Query(`SELECT payload FROM alerts`)
	if err != nil {
		return nil, fmt.Errorf("store: load alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("store: load alerts: %w", err)
		}
		var a model.Alert
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			// a corrupt row loses one alert, not the whole list
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveFavorites replaces the stored favorites wholesale.
func (s *Store) SaveFavorites(favorites []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save favorites: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM favorites`); err != nil {
		return fmt.Errorf("store: save favorites: %w", err)
	}
	for _, name := range favorites {
		if _, err := tx.Exec(`INSERT INTO favorites (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("store: save favorites: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) LoadFavorites() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM favorites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: load favorites: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: load favorites: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) SavePreference(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("store: save preference %s: %w", key, err)
	}
	return nil
}

// LoadPreference returns ("", false, nil) when the key was never written.
func (s *Store) LoadPreference(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: load preference %s: %w", key, err)
	}
	return value, true, nil
}
