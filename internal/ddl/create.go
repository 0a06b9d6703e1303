// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE / CREATE INDEX statements from it.
//
// Rendering is parameterized by a Renderer supplied by each backend, which
// owns identifier quoting and the mapping from Type to a concrete SQL type.
// Default values are emitted as raw SQL.
package ddl

import (
	"fmt"
	"strings"
)

// Renderer is the dialect surface the builders need.
type Renderer interface {
	QuoteIdent(id string) string
	ColumnType(t Type) string
}

// QuoteFQN quotes each dot-separated segment of name with r.
func QuoteFQN(r Renderer, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = r.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// QuoteAll quotes every identifier in ids.
func QuoteAll(r Renderer, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.QuoteIdent(id)
	}
	return out
}

// BuildCreateTableSQL renders
//
//	CREATE TABLE [IF NOT EXISTS] "t" (
//	  "c1" TYPE [NOT NULL] [DEFAULT expr],
//	  ...,
//	  PRIMARY KEY ("pk"),
//	  FOREIGN KEY ("fk") REFERENCES "other" ("id")
//	)
//
// Primary key columns are always NOT NULL.
func BuildCreateTableSQL(t TableDef, r Renderer, ifNotExists bool) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := r.ColumnType(c.Type)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s has no SQL type", name)
		}

		var sb strings.Builder
		sb.WriteString(r.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		lines = append(lines, sb.String())
		if c.PrimaryKey {
			pks = append(pks, r.QuoteIdent(name))
		}
	}
	if len(pks) > 0 {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) || fk.RefTable == "" {
			return "", fmt.Errorf("ddl: malformed foreign key on table %s", fqn)
		}
		lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			strings.Join(QuoteAll(r, fk.Columns), ", "),
			QuoteFQN(r, fk.RefTable),
			strings.Join(QuoteAll(r, fk.RefColumns), ", "),
		))
	}

	head := "CREATE TABLE "
	if ifNotExists {
		head += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n)", head, QuoteFQN(r, fqn), strings.Join(lines, ",\n  ")), nil
}

// BuildCreateIndexSQL renders CREATE INDEX [IF NOT EXISTS] "name" ON "t" ("c", ...).
func BuildCreateIndexSQL(idx IndexDef, r Renderer, ifNotExists bool) (string, error) {
	if idx.Name == "" || idx.Table == "" || len(idx.Columns) == 0 {
		return "", fmt.Errorf("ddl: index needs a name, a table and columns")
	}
	head := "CREATE INDEX "
	if ifNotExists {
		head += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s ON %s (%s)", head,
		r.QuoteIdent(idx.Name),
		QuoteFQN(r, idx.Table),
		strings.Join(QuoteAll(r, idx.Columns), ", "),
	), nil
}
