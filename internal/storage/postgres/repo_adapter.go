// Package postgres provides a Postgres-backed storage.Repository implementation.
// This adapter wires the backend into the storage-agnostic factory by
// registering a constructor and a database bootstrapper at init time, so
// callers obtain a Repository via storage.New without importing this package.
package postgres

import (
	"context"

	"salesetl/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// ensureDatabase is the bootstrap counterpart of newRepository.
var ensureDatabase = EnsureDatabase

// wrappedRepo implements storage.Repository by delegating to the concrete
// *postgres.Repository while providing a Close method that calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Ensure wrappedRepo satisfies storage.Repository at compile time.
var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, p storage.Params) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, configFrom(p))
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterBootstrap("postgres", func(ctx context.Context, p storage.Params) error {
		return ensureDatabase(ctx, configFrom(p))
	})
}
