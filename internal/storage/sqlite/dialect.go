package sqlite

import (
	"fmt"
	"strings"
	"time"

	"salesetl/internal/ddl"
)

// Dialect is the SQLite SQL surface. Dates are stored as ISO-8601 TEXT and
// booleans as INTEGER 0/1.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func (Dialect) ColumnType(t ddl.Type) string {
	switch t.Kind {
	case ddl.KindInteger, ddl.KindBoolean:
		return "INTEGER"
	case ddl.KindDecimal:
		return "REAL"
	case ddl.KindString, ddl.KindDate:
		return "TEXT"
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
	return `SELECT 1 FROM sqlite_master WHERE type = 'index' AND name = ?`, []any{idx.Name}
}

func (Dialect) Bind(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return v
	}
}

func (Dialect) MonthBucket(col string) string {
	return fmt.Sprintf("strftime('%%Y-%%m', %s)", col)
}

func (Dialect) Limit(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

func (Dialect) Placeholder(int) string { return "?" }

// MaxParams is SQLITE_MAX_VARIABLE_NUMBER for older builds.
func (Dialect) MaxParams() int { return 999 }
