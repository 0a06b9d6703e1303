package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"salesetl/internal/schema"
	"salesetl/internal/storage"
	"salesetl/internal/storage/sqldb"
)

func newRepo(tb testing.TB) *sqldb.Repository {
	tb.Helper()
	db, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	r := sqldb.New(db, Dialect{})
	tb.Cleanup(r.Close)
	return r
}

func mustExec(tb testing.TB, r *sqldb.Repository, stmt string) {
	tb.Helper()
	if err := r.Exec(context.Background(), stmt); err != nil {
		tb.Fatalf("exec %q: %v", stmt, err)
	}
}

func TestSchemaEnsureIsIdempotent(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := schema.Ensure(ctx, r); err != nil {
			t.Fatalf("Ensure pass %d: %v", i+1, err)
		}
	}

	res, err := r.Query(ctx, `SELECT name FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%' ORDER BY name`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("indexes = %v, want 3", res.Rows)
	}
}

func TestCopyFromAndQuery(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE items (id INTEGER, label TEXT, ok INTEGER, day TEXT, price REAL)`)

	day := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := [][]any{
		{int64(1), "a", true, day, 9.5},
		{int64(2), nil, false, nil, nil},
	}
	n, err := r.CopyFrom(ctx, "items", []string{"id", "label", "ok", "day", "price"}, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}

	res, err := r.Query(ctx, `SELECT id, label, ok, day, price FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got := strings.Join(res.Columns, ","); got != "id,label,ok,day,price" {
		t.Fatalf("columns = %q", got)
	}
	first := res.Rows[0]
	if first[1] != "a" || first[2] != int64(1) || first[3] != "2023-01-05" || first[4] != 9.5 {
		t.Fatalf("row 1 = %#v", first)
	}
	second := res.Rows[1]
	if second[1] != nil || second[2] != int64(0) || second[3] != nil {
		t.Fatalf("row 2 = %#v", second)
	}
}

func TestCopyFromSplitsByParamLimit(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE wide (a INTEGER, b INTEGER, c INTEGER)`)

	rows := make([][]any, 700) // 2100 params, three statements
	for i := range rows {
		rows[i] = []any{int64(i), int64(i), int64(i)}
	}
	n, err := r.CopyFrom(ctx, "wide", []string{"a", "b", "c"}, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 700 {
		t.Fatalf("inserted = %d, want 700", n)
	}
}

func TestCopyFromRowLengthMismatch(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	mustExec(t, r, `CREATE TABLE t (a INTEGER, b INTEGER)`)
	_, err := r.CopyFrom(context.Background(), "t", []string{"a", "b"}, [][]any{{1}})
	if err == nil || !strings.Contains(err.Error(), "row 0 length 1") {
		t.Fatalf("err = %v, want row length error", err)
	}
}

func TestForeignKeysAreEnforced(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	if err := schema.Ensure(ctx, r); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	_, err := r.CopyFrom(ctx, schema.Transactions, []string{"transaction_id", "customer_id", "product_id"},
		[][]any{{"T1", "C404", "P404"}})
	if err == nil {
		t.Fatalf("CopyFrom with dangling references succeeded, want FK error")
	}

	res, qerr := r.Query(ctx, `SELECT COUNT(*) FROM transactions`)
	if qerr != nil {
		t.Fatalf("Query: %v", qerr)
	}
	if res.Rows[0][0] != int64(0) {
		t.Fatalf("rows after failed chunk = %v, want 0", res.Rows[0][0])
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE t (a INTEGER PRIMARY KEY)`)

	err := r.InTx(ctx, func(w storage.Writer) error {
		if _, err := w.CopyFrom(ctx, "t", []string{"a"}, [][]any{{int64(1)}}); err != nil {
			return err
		}
		_, err := w.CopyFrom(ctx, "t", []string{"a"}, [][]any{{int64(1)}})
		return err
	})
	if err == nil {
		t.Fatalf("InTx error = nil, want duplicate key error")
	}
	res, _ := r.Query(ctx, `SELECT COUNT(*) FROM t`)
	if res.Rows[0][0] != int64(0) {
		t.Fatalf("rows after rollback = %v, want 0", res.Rows[0][0])
	}
}

func TestDialectSQL(t *testing.T) {
	t.Parallel()

	d := Dialect{}
	if got := d.MonthBucket("date_std"); got != "strftime('%Y-%m', date_std)" {
		t.Errorf("MonthBucket = %q", got)
	}
	if got := d.Limit("SELECT 1", 5); got != "SELECT 1 LIMIT 5" {
		t.Errorf("Limit = %q", got)
	}
	if got := d.QuoteIdent(`a"b`); got != `"a""b"` {
		t.Errorf("QuoteIdent = %q", got)
	}
}

func TestEnsureDatabaseCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "sales.db")
	if err := EnsureDatabase(context.Background(), Config{DSN: path}); err != nil {
		t.Fatalf("EnsureDatabase: %v", err)
	}
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: path})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()
	mustExec(t, r, `CREATE TABLE t (a INTEGER)`)
}

func TestFilePath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		":memory:":                   "",
		"file::memory:?cache=shared": "",
		"file:x.db?mode=memory":      "",
		"data/sales.db":              "data/sales.db",
		"file:data/sales.db?cache=1": "data/sales.db",
	}
	for in, want := range tests {
		if got := filePath(in); got != want {
			t.Errorf("filePath(%q) = %q, want %q", in, got, want)
		}
	}
}
