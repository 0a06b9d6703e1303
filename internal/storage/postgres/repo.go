// Package postgres implements a Postgres repository using pgx v5. Chunks are
// written with the COPY protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesetl/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// configFrom returns p.DSN when set and otherwise builds a postgres:// URL
// from the discrete fields.
func configFrom(p storage.Params) Config {
	if strings.TrimSpace(p.DSN) != "" {
		return Config{DSN: p.DSN}
	}
	u := url.URL{Scheme: "postgres", Host: p.HostPort(5432), Path: "/" + p.Database}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	return Config{DSN: u.String()}
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool}, close, nil
}

func (r *Repository) Dialect() storage.Dialect { return Dialect{} }

func (r *Repository) Close() { r.pool.Close() }

// copier is the COPY surface shared by *pgxpool.Pool and pgx.Tx.
type copier interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CopyFrom streams rows into table with COPY. A COPY is atomic, so a failed
// chunk leaves no rows behind.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyRows(ctx, r.pool, table, columns, rows)
}

func (r *Repository) Exec(ctx context.Context, sql string, args ...any) error {
	return exec(ctx, r.pool, sql, args)
}

// Query materializes every row. NUMERIC values come back as float64 and
// integer widths are normalized to int64.
func (r *Repository) Query(ctx context.Context, sql string, args ...any) (storage.Result, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return storage.Result{}, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	var res storage.Result
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return storage.Result{}, fmt.Errorf("postgres: values: %w", err)
		}
		for i, v := range vals {
			vals[i] = plainValue(v)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return storage.Result{}, fmt.Errorf("postgres: rows: %w", err)
	}
	return res, nil
}

// InTx runs fn inside one transaction.
func (r *Repository) InTx(ctx context.Context, fn func(storage.Writer) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(txWriter{tx: tx})
	})
}

type txWriter struct{ tx pgx.Tx }

func (w txWriter) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyRows(ctx, w.tx, table, columns, rows)
}

func (w txWriter) Exec(ctx context.Context, sql string, args ...any) error {
	return exec(ctx, w.tx, sql, args)
}

func copyRows(ctx context.Context, c copier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := c.CopyFrom(ctx, splitFQN(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("copy into %s: %s (%s): %w", table, pgErr.Detail, pgErr.SQLState(), err)
		}
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

func exec(ctx context.Context, c copier, sql string, args []any) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := c.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

func plainValue(v any) any {
	switch x := v.(type) {
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// EnsureDatabase connects to the maintenance database and creates the
// configured one when pg_database does not list it.
func EnsureDatabase(ctx context.Context, cfg Config) error {
	cc, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("postgres dsn: %w", err)
	}
	name := cc.Database
	if name == "" || name == "postgres" {
		return nil
	}
	cc.Database = "postgres"

	conn, err := pgx.ConnectConfig(ctx, cc)
	if err != nil {
		return fmt.Errorf("postgres: connect maintenance db: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name).Scan(&exists); err != nil {
		return fmt.Errorf("postgres: lookup database %s: %w", name, err)
	}
	if exists {
		return nil
	}
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgIdent(name)); err != nil {
		return fmt.Errorf("postgres: create database %s: %w", name, err)
	}
	return nil
}
