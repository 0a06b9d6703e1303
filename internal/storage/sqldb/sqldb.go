// Package sqldb implements storage.Repository on top of database/sql for the
// backends whose drivers plug into it (mysql, sqlite, mssql).
//
// Chunks are written with multi-row INSERT statements inside one transaction
// per CopyFrom call, split so no statement exceeds the dialect's parameter
// limit. Backends with a native bulk API can replace the INSERT path.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"salesetl/internal/ddl"
	"salesetl/internal/storage"
)

// Dialect adds the database/sql specifics to storage.Dialect.
type Dialect interface {
	storage.Dialect
	// Placeholder returns the bind marker for the i-th (1-based) argument.
	Placeholder(i int) string
	// MaxParams is the largest number of bind arguments in one statement.
	MaxParams() int
}

// BulkFn writes one chunk inside tx using a backend-native bulk API.
type BulkFn func(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error)

// Repository is a database/sql backed storage.Repository.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	bulk    BulkFn
}

// Option configures a Repository.
type Option func(*Repository)

// WithBulk makes CopyFrom use fn instead of multi-row INSERTs.
func WithBulk(fn BulkFn) Option { return func(r *Repository) { r.bulk = fn } }

// New wraps an open *sql.DB. The Repository owns db and closes it in Close.
func New(db *sql.DB, d Dialect, opts ...Option) *Repository {
	r := &Repository{db: db, dialect: d}
	for _, o := range opts {
		o(r)
	}
	return r
}

var _ storage.Repository = (*Repository)(nil)

// DB exposes the underlying pool.
func (r *Repository) DB() *sql.DB { return r.db }

func (r *Repository) Dialect() storage.Dialect { return r.dialect }

func (r *Repository) Close() { _ = r.db.Close() }

// CopyFrom writes rows to table in a single transaction; the rows become
// visible together or not at all.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, r.errorf("begin tx: %w", err)
	}
	n, err := r.copyTx(ctx, tx, table, columns, rows)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, r.errorf("commit: %w", err)
	}
	return n, nil
}

func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	return r.exec(ctx, r.db, query, args)
}

// Query runs query and reads every row. []byte values are returned as strings.
func (r *Repository) Query(ctx context.Context, query string, args ...any) (storage.Result, error) {
	rows, err := r.db.QueryContext(ctx, query, r.bindAll(args)...)
	if err != nil {
		return storage.Result{}, r.errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return storage.Result{}, r.errorf("columns: %w", err)
	}
	res := storage.Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return storage.Result{}, r.errorf("scan: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return storage.Result{}, r.errorf("rows: %w", err)
	}
	return res, nil
}

// InTx runs fn in one transaction, committing when fn returns nil.
func (r *Repository) InTx(ctx context.Context, fn func(storage.Writer) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.errorf("begin tx: %w", err)
	}
	if err := fn(txWriter{r: r, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, r.errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return r.errorf("commit: %w", err)
	}
	return nil
}

type txWriter struct {
	r  *Repository
	tx *sql.Tx
}

func (w txWriter) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return w.r.copyTx(ctx, w.tx, table, columns, rows)
}

func (w txWriter) Exec(ctx context.Context, query string, args ...any) error {
	return w.r.exec(ctx, w.tx, query, args)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repository) exec(ctx context.Context, e execer, query string, args []any) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if _, err := e.ExecContext(ctx, query, r.bindAll(args)...); err != nil {
		return r.errorf("exec: %w", err)
	}
	return nil
}

func (r *Repository) copyTx(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, r.errorf("CopyFrom: columns must not be empty")
	}
	bound := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, r.errorf("CopyFrom: row %d length %d != columns length %d", i, len(row), len(columns))
		}
		bound[i] = r.bindAll(row)
	}
	if r.bulk != nil {
		return r.bulk(ctx, tx, table, columns, bound)
	}

	per := r.dialect.MaxParams() / len(columns)
	if per < 1 {
		per = 1
	}
	var inserted int64
	for _, part := range storage.Chunk(bound, per) {
		query, args := r.insertSQL(table, columns, part)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, r.errorf("insert into %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		} else {
			inserted += int64(len(part))
		}
	}
	return inserted, nil
}

func (r *Repository) insertSQL(table string, columns []string, rows [][]any) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(ddl.QuoteFQN(r.dialect, table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(ddl.QuoteAll(r.dialect, columns), ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.dialect.Placeholder(len(args) + 1))
			args = append(args, row[j])
		}
		sb.WriteByte(')')
	}
	return sb.String(), args
}

func (r *Repository) bindAll(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = r.dialect.Bind(v)
	}
	return out
}

func (r *Repository) errorf(format string, args ...any) error {
	return fmt.Errorf(r.dialect.Name()+": "+format, args...)
}
