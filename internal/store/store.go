// Package store provides the etch compile cache.
//
// The cache is a small SQLite database recording, per compiled spec file,
// the content hash of its source and the number of tests emitted. The
// compile command consults it to skip files whose source has not changed.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store is the compile cache.
type Store struct {
	db *sql.DB
}

// Open creates or opens a cache database at the given path. ":memory:"
// yields an ephemeral cache. Idempotent; safe to call on an existing db.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to cache: %w", err)
	}

	// SQLite supports a single writer; keep one connection to avoid
	// SQLITE_BUSY between goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one cached compilation record.
type Entry struct {
	Path      string
	SpecHash  string
	TestCount int
}

// Lookup returns the cached entry for a path, or nil when none exists.
func (s *Store) Lookup(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, spec_hash, test_count FROM compiled_specs WHERE path = ?`, path)

	var e Entry
	if err := row.Scan(&e.Path, &e.SpecHash, &e.TestCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache entry for %s: %w", path, err)
	}
	return &e, nil
}

// Unchanged reports whether the cached hash for path matches hash.
func (s *Store) Unchanged(ctx context.Context, path, hash string) (bool, error) {
	e, err := s.Lookup(ctx, path)
	if err != nil {
		return false, err
	}
	return e != nil && e.SpecHash == hash, nil
}

// Record upserts the compilation record for a path.
func (s *Store) Record(ctx context.Context, path, hash string, testCount int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO compiled_specs (path, spec_hash, test_count, updated_at)
		 VALUES (?, ?, ?, strftime('%s','now'))
		 ON CONFLICT(path) DO UPDATE SET
		   spec_hash = excluded.spec_hash,
		   test_count = excluded.test_count,
		   updated_at = excluded.updated_at`,
		path, hash, testCount)
	if err != nil {
		return fmt.Errorf("recording cache entry for %s: %w", path, err)
	}
	return nil
}
