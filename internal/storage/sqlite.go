package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure-Go driver, no cgo needed on client machines
)

// SQLiteStore is the durable Store implementation backed by a local
// SQLite database file
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLite opens (creating if needed) the chat state database at path
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path not set")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage database: %w", err)
	}

	// Single local writer; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping storage database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// newSQLiteFromDB wraps an existing connection, used by tests
func newSQLiteFromDB(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// createTables creates the key-value table if it does not exist
func (s *SQLiteStore) createTables() error {
	query := `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create storage tables: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *SQLiteStore) Set(key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the store. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
