// Package mssql implements a Microsoft SQL Server repository on go-mssqldb.
// Chunks are written with the driver's bulk copy API.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"salesetl/internal/storage"
	"salesetl/internal/storage/sqldb"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// configFrom returns p.DSN when set and otherwise builds a sqlserver:// URL
// from the discrete fields.
func configFrom(p storage.Params) Config {
	if strings.TrimSpace(p.DSN) != "" {
		return Config{DSN: p.DSN}
	}
	u := url.URL{Scheme: "sqlserver", Host: p.HostPort(1433)}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	if p.Database != "" {
		u.RawQuery = url.Values{"database": {p.Database}}.Encode()
	}
	return Config{DSN: u.String()}
}

func open(ctx context.Context, dsn string) (*sql.DB, error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(dsn); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*sqldb.Repository, func(), error) {
	db, err := open(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	repo := sqldb.New(db, Dialect{}, sqldb.WithBulk(CopyIn))
	return repo, repo.Close, nil
}

// CopyIn bulk-copies rows into table inside tx and returns the number of
// rows the server acknowledged.
func CopyIn(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// EnsureDatabase connects to master and creates the configured database
// when DB_ID reports it missing.
func EnsureDatabase(ctx context.Context, cfg Config) error {
	u, err := url.Parse(cfg.DSN)
	if err != nil || u.Scheme != "sqlserver" {
		// ADO-style DSNs are left to the server; nothing to bootstrap.
		return nil
	}
	q := u.Query()
	name := q.Get("database")
	if name == "" || strings.EqualFold(name, "master") {
		return nil
	}
	q.Set("database", "master")
	u.RawQuery = q.Encode()

	db, err := open(ctx, u.String())
	if err != nil {
		return err
	}
	defer db.Close()

	stmt := fmt.Sprintf("IF DB_ID(N'%s') IS NULL CREATE DATABASE %s", nString(name), msIdent(name))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mssql: create database %s: %w", name, err)
	}
	return nil
}
