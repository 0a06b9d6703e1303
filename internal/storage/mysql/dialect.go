package mysql

import (
	"fmt"
	"strings"
	"time"

	"salesetl/internal/ddl"
)

// Dialect is the MySQL SQL surface.
type Dialect struct{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

func (Dialect) ColumnType(t ddl.Type) string {
	switch t.Kind {
	case ddl.KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case ddl.KindInteger:
		return "INT"
	case ddl.KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
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

// CreateIndexSQL renders a plain CREATE INDEX; MySQL has no IF NOT EXISTS
// for indexes.
func (d Dialect) CreateIndexSQL(idx ddl.IndexDef) (string, error) {
	return ddl.BuildCreateIndexSQL(idx, d, false)
}

func (Dialect) IndexExistsSQL(idx ddl.IndexDef) (string, []any) {
	return `SELECT 1 FROM information_schema.statistics
WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
LIMIT 1`, []any{idx.Table, idx.Name}
}

func (Dialect) Bind(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return v
}

func (Dialect) MonthBucket(col string) string {
	return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", col)
}

func (Dialect) Limit(query string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", query, n)
}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) MaxParams() int { return 65535 }
