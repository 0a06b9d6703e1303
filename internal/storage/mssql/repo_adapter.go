// Package mssql provides an MSSQL-backed storage.Repository implementation.
// This adapter wires the MSSQL backend into the storage-agnostic factory.
package mssql

import (
	"context"

	"salesetl/internal/storage"
	"salesetl/internal/storage/sqldb"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// ensureDatabase is the bootstrap counterpart of newRepository.
var ensureDatabase = EnsureDatabase

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, p storage.Params) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, configFrom(p))
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterBootstrap("mssql", func(ctx context.Context, p storage.Params) error {
		return ensureDatabase(ctx, configFrom(p))
	})
}

// wrappedRepo adapts *sqldb.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*sqldb.Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
