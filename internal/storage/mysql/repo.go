// Package mysql implements a MySQL-backed storage.Repository using
// github.com/go-sql-driver/mysql under database/sql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"salesetl/internal/storage"
	"salesetl/internal/storage/sqldb"
)

// errBadDB is ER_BAD_DB_ERROR, returned when the schema does not exist.
const errBadDB = 1049

// Config holds the MySQL connection settings derived from storage.Params.
type Config struct {
	Driver *mysql.Config
}

// configFrom builds a driver config from p. An explicit DSN is parsed as is;
// otherwise the discrete fields are used.
func configFrom(p storage.Params) (Config, error) {
	if strings.TrimSpace(p.DSN) != "" {
		c, err := mysql.ParseDSN(p.DSN)
		if err != nil {
			return Config{}, fmt.Errorf("mysql dsn: %w", err)
		}
		return Config{Driver: c}, nil
	}
	c := mysql.NewConfig()
	c.User = p.User
	c.Passwd = p.Password
	c.Net = "tcp"
	c.Addr = p.HostPort(3306)
	c.DBName = p.Database
	return Config{Driver: c}, nil
}

func open(ctx context.Context, c *mysql.Config) (*sql.DB, error) {
	connector, err := mysql.NewConnector(c)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(connector)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping %s: %w", c.Addr, err)
	}
	return db, nil
}

// NewRepository connects to the configured database and returns a
// Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*sqldb.Repository, func(), error) {
	if cfg.Driver == nil {
		return nil, nil, fmt.Errorf("mysql: driver config must not be nil")
	}
	db, err := open(ctx, cfg.Driver)
	if err != nil {
		return nil, nil, err
	}
	repo := sqldb.New(db, Dialect{})
	return repo, repo.Close, nil
}

// EnsureDatabase creates the configured schema when the server reports it
// unknown. Any other connection failure is returned unchanged.
func EnsureDatabase(ctx context.Context, cfg Config) error {
	if cfg.Driver == nil || cfg.Driver.DBName == "" {
		return nil
	}
	db, err := open(ctx, cfg.Driver)
	if err == nil {
		_ = db.Close()
		return nil
	}
	if !isUnknownDatabase(err) {
		return err
	}

	server := cfg.Driver.Clone()
	server.DBName = ""
	db, err = open(ctx, server)
	if err != nil {
		return err
	}
	defer db.Close()

	stmt := "CREATE DATABASE IF NOT EXISTS " + Dialect{}.QuoteIdent(cfg.Driver.DBName)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: create database %s: %w", cfg.Driver.DBName, err)
	}
	return nil
}

func isUnknownDatabase(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errBadDB
}
