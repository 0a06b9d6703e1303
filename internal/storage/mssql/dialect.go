package mssql

import (
	"fmt"
	"strings"

	"salesetl/internal/ddl"
)

// Dialect is the SQL Server SQL surface.
type Dialect struct{}

func (Dialect) Name() string { return "mssql" }

func (Dialect) QuoteIdent(id string) string { return msIdent(id) }

func (Dialect) ColumnType(t ddl.Type) string {
	switch t.Kind {
	case ddl.KindString:
		return fmt.Sprintf("NVARCHAR(%d)", t.Length)
	case ddl.KindInteger:
		return "INT"
	case ddl.KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case ddl.KindBoolean:
		return "BIT"
	case ddl.KindDate:
		return "DATE"
	default:
		return ""
	}
}

// CreateTableSQL guards a plain CREATE TABLE with an OBJECT_ID check.
func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	stmt, err := ddl.BuildCreateTableSQL(t, d, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s", nString(t.FQN), stmt), nil
}

func (d Dialect) CreateIndexSQL(idx ddl.IndexDef) (string, error) {
	return ddl.BuildCreateIndexSQL(idx, d, false)
}

func (Dialect) IndexExistsSQL(idx ddl.IndexDef) (string, []any) {
	return `SELECT 1 FROM sys.indexes WHERE name = @p1 AND object_id = OBJECT_ID(@p2)`, []any{idx.Name, idx.Table}
}

func (Dialect) Bind(v any) any { return v }

func (Dialect) MonthBucket(col string) string {
	return fmt.Sprintf("FORMAT(%s, 'yyyy-MM')", col)
}

// Limit rewrites the leading SELECT to SELECT TOP n.
func (Dialect) Limit(query string, n int) string {
	trimmed := strings.TrimLeft(query, " \t\n")
	if len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "SELECT") {
		return fmt.Sprintf("SELECT TOP %d%s", n, trimmed[6:])
	}
	return query
}

func (Dialect) Placeholder(i int) string { return fmt.Sprintf("@p%d", i) }

func (Dialect) MaxParams() int { return 2100 }

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// nString escapes s for use inside an N'...' literal.
func nString(s string) string { return strings.ReplaceAll(s, "'", "''") }
