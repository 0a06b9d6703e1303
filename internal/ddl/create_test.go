package ddl

import (
	"fmt"
	"strings"
	"testing"
)

// ansi quotes with double quotes and spells out every type.
type ansi struct{}

func (ansi) QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func (ansi) ColumnType(t Type) string {
	switch t.Kind {
	case KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case KindInteger:
		return "INT"
	case KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case KindBoolean:
		return "BOOLEAN"
	case KindDate:
		return "DATE"
	}
	return ""
}

// TestBuildCreateTableSQL verifies rendered statements and the errors for
// invalid definitions.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		ifNotExists bool
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", Type: Integer()}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column without type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "has no SQL type",
		},
		{
			name: "foreign key arity mismatch returns error",
			def: TableDef{
				FQN:         "t",
				Columns:     []ColumnDef{{Name: "a", Type: Integer()}},
				ForeignKeys: []ForeignKey{{Columns: []string{"a"}, RefTable: "o"}},
			},
			errContains: "malformed foreign key",
		},
		{
			name: "primary key and foreign key",
			def: TableDef{
				FQN: "transactions",
				Columns: []ColumnDef{
					{Name: "transaction_id", Type: String(50), PrimaryKey: true},
					{Name: "customer_id", Type: String(50), Nullable: true},
					{Name: "total_value", Type: Decimal(12, 2), Nullable: true, Default: "0"},
				},
				ForeignKeys: []ForeignKey{{Columns: []string{"customer_id"}, RefTable: "customers", RefColumns: []string{"customer_id"}}},
			},
			ifNotExists: true,
			wantSQL: "CREATE TABLE IF NOT EXISTS \"transactions\" (\n" +
				"  \"transaction_id\" VARCHAR(50) NOT NULL,\n" +
				"  \"customer_id\" VARCHAR(50),\n" +
				"  \"total_value\" DECIMAL(12,2) DEFAULT 0,\n" +
				"  PRIMARY KEY (\"transaction_id\"),\n" +
				"  FOREIGN KEY (\"customer_id\") REFERENCES \"customers\" (\"customer_id\")\n" +
				")",
		},
		{
			name: "dotted FQN quotes each segment",
			def: TableDef{
				FQN:     "sales.customers",
				Columns: []ColumnDef{{Name: "customer_id", Type: String(50), PrimaryKey: true}},
			},
			wantSQL: "CREATE TABLE \"sales\".\"customers\" (\n" +
				"  \"customer_id\" VARCHAR(50) NOT NULL,\n" +
				"  PRIMARY KEY (\"customer_id\")\n" +
				")",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateTableSQL(tc.def, ansi{}, tc.ifNotExists)
			if tc.errContains != "" {
				if err == nil {
					t.Fatalf("BuildCreateTableSQL() error = nil, want %q", tc.errContains)
				}
				if !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("error %q does not contain %q", err, tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildCreateTableSQL() error = %v", err)
			}
			if got != tc.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tc.wantSQL)
			}
		})
	}
}

func TestBuildCreateIndexSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateIndexSQL(IndexDef{Name: "idx_transactions_region", Table: "transactions", Columns: []string{"region"}}, ansi{}, true)
	if err != nil {
		t.Fatalf("BuildCreateIndexSQL() error = %v", err)
	}
	want := `CREATE INDEX IF NOT EXISTS "idx_transactions_region" ON "transactions" ("region")`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if _, err := BuildCreateIndexSQL(IndexDef{Name: "x"}, ansi{}, false); err == nil {
		t.Fatalf("BuildCreateIndexSQL() error = nil for index without table")
	}
}

func TestColumnNames(t *testing.T) {
	t.Parallel()

	def := TableDef{Columns: []ColumnDef{{Name: "a"}, {Name: "b"}}}
	if got := strings.Join(def.ColumnNames(), ","); got != "a,b" {
		t.Fatalf("ColumnNames() = %q", got)
	}
}
