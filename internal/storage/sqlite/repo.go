// Package sqlite implements a SQLite-backed storage.Repository on the pure Go
// modernc.org/sqlite driver. SQLite has no bulk-load API, so chunks are
// written as multi-row INSERTs inside a transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"salesetl/internal/storage/sqldb"
)

// Config holds the SQLite connection settings derived from storage.Params.
type Config struct {
	// DSN is a file path or file: URI, e.g. "sales.db" or ":memory:".
	DSN string
}

// configFrom prefers an explicit DSN and falls back to the database name,
// which for SQLite is the file path.
func configFrom(dsn, database string) Config {
	if strings.TrimSpace(dsn) != "" {
		return Config{DSN: dsn}
	}
	return Config{DSN: database}
}

// Open opens dsn with a single connection, so an in-memory database is
// shared by every statement, and turns on foreign key enforcement.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	return db, nil
}

// NewRepository opens the database named by cfg and returns a Repository
// plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*sqldb.Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := Open(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	repo := sqldb.New(db, Dialect{})
	return repo, repo.Close, nil
}

// EnsureDatabase creates the parent directory of a file database. SQLite
// creates the file itself on first open.
func EnsureDatabase(_ context.Context, cfg Config) error {
	path := filePath(cfg.DSN)
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sqlite: create directory %s: %w", dir, err)
	}
	return nil
}

// filePath returns the on-disk path of dsn, or "" for in-memory databases.
func filePath(dsn string) string {
	p, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if p == "" || p == ":memory:" || strings.Contains(query, "mode=memory") {
		return ""
	}
	return p
}
