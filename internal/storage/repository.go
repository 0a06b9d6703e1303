// Package storage contains storage-agnostic contracts and utilities: the
// Repository a backend provides, the backend registry, the database
// bootstrap registry and the chunked batch writer.
package storage

import (
	"context"
	"strconv"

	"salesetl/internal/ddl"
)

// Params are the connection settings shared by every backend. DSN, when set,
// overrides the discrete fields.
type Params struct {
	Kind     string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	DSN      string
}

// HostPort joins Host and Port, using def when Port is unset.
func (p Params) HostPort(def int) string {
	port := p.Port
	if port == 0 {
		port = def
	}
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	return host + ":" + strconv.Itoa(port)
}

// Writer is the write surface used by loaders. A Repository is a Writer and
// so is the handle passed to InTx callbacks.
type Writer interface {
	// CopyFrom appends rows (aligned to columns) to table in one batch write
	// and returns the number of rows the backend acknowledged.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, sql string, args ...any) error
}

// Result is a fully read query result. Values are plain Go types: int64,
// float64, string, bool, time.Time or nil.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Repository is an open connection to one database.
type Repository interface {
	Writer
	// Query runs a read-only statement and materializes every row.
	Query(ctx context.Context, sql string, args ...any) (Result, error)
	// InTx runs fn inside one transaction. fn's error rolls it back.
	InTx(ctx context.Context, fn func(Writer) error) error
	Dialect() Dialect
	Close()
}

// Dialect is the SQL surface that differs between backends.
type Dialect interface {
	ddl.Renderer

	Name() string
	// CreateTableSQL returns an idempotent CREATE TABLE statement.
	CreateTableSQL(t ddl.TableDef) (string, error)
	// CreateIndexSQL returns a CREATE INDEX statement.
	CreateIndexSQL(idx ddl.IndexDef) (string, error)
	// IndexExistsSQL returns a query yielding at least one row when the index
	// named by idx exists.
	IndexExistsSQL(idx ddl.IndexDef) (string, []any)
	// Bind converts a Go value to what the driver expects for this dialect.
	Bind(v any) any
	// MonthBucket returns an expression rendering a date column as YYYY-MM.
	MonthBucket(col string) string
	// Limit restricts a SELECT to its first n rows.
	Limit(query string, n int) string
}
