// Package store persists the application's entities in SQLite. It owns the
// "insert if fingerprint absent" semantics the statement pipeline relies on
// for duplicate rejection; everything else is plain repository plumbing.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored. SQLite has no native time type,
// so every write formats and every read parses explicitly.
const timeLayout = time.RFC3339Nano

// Store wraps a shared SQLite handle. All repositories hang off it so one
// connection pool serves the whole process.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the
// pragmas the app needs. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.Open: %w", err)
	}

	// modernc/sqlite serializes writes anyway; a single connection avoids
	// SQLITE_BUSY under concurrent handlers and keeps :memory: databases
	// from silently becoming one-per-connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store.Open: %s: %w", pragma, err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for the migration runner and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ExecSchema applies raw DDL, used by tests to load the migration file.
func (s *Store) ExecSchema(ctx context.Context, ddl string) error {
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ExecSchema: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
