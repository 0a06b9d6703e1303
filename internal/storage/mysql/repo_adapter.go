package mysql

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

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, p storage.Params) (storage.Repository, error) {
		cfg, err := configFrom(p)
		if err != nil {
			return nil, err
		}
		r, closeFn, err := newRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterBootstrap("mysql", func(ctx context.Context, p storage.Params) error {
		cfg, err := configFrom(p)
		if err != nil {
			return err
		}
		return ensureDatabase(ctx, cfg)
	})
}

// wrappedRepo adapts *sqldb.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*sqldb.Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() { w.closeFn() }
