// Package database implements the sqlite-backed key-value store.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fortress-go/internal/database/migrations"
	"fortress-go/internal/fortress"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements fortress.Store on a single kv table.
type SQLiteStore struct {
	db *sql.DB
}

var _ fortress.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens path (or ":memory:") and migrates it to the latest schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// newSQLiteStoreFromDB wraps an existing connection.
// The caller is responsible for ensuring the schema is in place.
func newSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate database,
	// and a single writer also keeps file databases free of lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := fortress.ValidateKey(key); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("getting %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// CheckMigrations verifies that the schema is at the latest version.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
