// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "research-cache.db"

// SQLite is a Cache persisted to a local SQLite database, so entries
// survive across runs on one machine.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the cache database under dir, creating the
// schema when missing.
func NewSQLite(dir string) (*SQLite, error) {
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_expires ON entries(expires_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	var expiresAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		return nil, false
	}

	expires, err := time.Parse(time.RFC3339Nano, expiresAt)
	if err != nil || time.Now().After(expires) {
		// Expired and unreadable rows are deleted on sight.
		s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
		return nil, false
	}
	return value, true
}

func (s *SQLite) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	expiresAt := time.Now().Add(ttl).UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
