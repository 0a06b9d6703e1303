package sqlite

import (
	"context"

	"salesetl/internal/storage"
	"salesetl/internal/storage/sqldb"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid opening a database.
var newRepository = NewRepository

// wrappedRepo adds a Close that runs the cleanup function returned by
// NewRepository.
type wrappedRepo struct {
	*sqldb.Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, p storage.Params) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, configFrom(p.DSN, p.Database))
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterBootstrap("sqlite", func(ctx context.Context, p storage.Params) error {
		return EnsureDatabase(ctx, configFrom(p.DSN, p.Database))
	})
}
