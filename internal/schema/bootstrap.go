package schema

import (
	"context"
	"fmt"

	"salesetl/internal/storage"
)

// Repo is the part of storage.Repository the bootstrap needs.
type Repo interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (storage.Result, error)
	Dialect() storage.Dialect
}

// CreateTables creates any missing table, parents first.
func CreateTables(ctx context.Context, repo Repo) error {
	d := repo.Dialect()
	for _, t := range Tables() {
		stmt, err := d.CreateTableSQL(t)
		if err != nil {
			return fmt.Errorf("render table %s: %w", t.FQN, err)
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", t.FQN, err)
		}
	}
	return nil
}

// CreateIndexes creates any missing index. Existence is checked first
// because not every dialect supports CREATE INDEX IF NOT EXISTS.
func CreateIndexes(ctx context.Context, repo Repo) error {
	d := repo.Dialect()
	for _, idx := range Indexes() {
		q, args := d.IndexExistsSQL(idx)
		res, err := repo.Query(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("lookup index %s: %w", idx.Name, err)
		}
		if len(res.Rows) > 0 {
			continue
		}
		stmt, err := d.CreateIndexSQL(idx)
		if err != nil {
			return fmt.Errorf("render index %s: %w", idx.Name, err)
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

// Ensure creates tables then indexes.
func Ensure(ctx context.Context, repo Repo) error {
	if err := CreateTables(ctx, repo); err != nil {
		return err
	}
	return CreateIndexes(ctx, repo)
}
