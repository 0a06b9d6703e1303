package postgres

import (
	"fmt"
	"strings"

	"salesetl/internal/ddl"
)

// Dialect is the Postgres SQL surface.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// QuoteIdent double-quotes id, escaping embedded quotes.
func (Dialect) QuoteIdent(id string) string { return pgIdent(id) }

func (Dialect) ColumnType(t ddl.Type) string {
	switch t.Kind {
	case ddl.KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case ddl.KindInteger:
		return "INTEGER"
	case ddl.KindDecimal:
		return fmt.Sprintf("NUMERIC(%d,%d)", t.Precision, t.Scale)
	case ddl.KindBoolean:
		return "BOOLEAN"
	case ddl.KindDate:
		return "DATE"
	default:
		return ""
	}
}

func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, d, true)
}

func (d Dialect) CreateIndexSQL(idx ddl.IndexDef) (string, error) {
	return ddl.BuildCreateIndexSQL(idx, d, true)
}

func (Dialect) IndexExistsSQL(idx ddl.IndexDef) (string, []any) {
	return `SELECT 1 FROM pg_indexes WHERE indexname = $1`, []any{idx.Name}
}

// Bind passes values through; pgx encodes time.Time, bool and float64 for
// DATE, BOOLEAN and NUMERIC columns natively.
func (Dialect) Bind(v any) any { return v }

func (Dialect) MonthBucket(col string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM')", col)
}

func (Dialect) Limit(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
