package ddl

// Kind is a portable column type. Dialects map it to a concrete SQL type.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
)

// Type is a Kind plus its size parameters: Length for strings, Precision and
// Scale for decimals.
type Type struct {
	Kind      Kind
	Length    int
	Precision int
	Scale     int
}

func String(n int) Type     { return Type{Kind: KindString, Length: n} }
func Decimal(p, s int) Type { return Type{Kind: KindDecimal, Precision: p, Scale: s} }
func Integer() Type         { return Type{Kind: KindInteger} }
func Boolean() Type         { return Type{Kind: KindBoolean} }
func Date() Type            { return Type{Kind: KindDate} }

// ColumnDef describes one column. Name is unquoted; quoting happens when a
// dialect renders it. Default is a raw SQL expression.
type ColumnDef struct {
	Name       string
	Type       Type
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// ForeignKey references RefColumns of RefTable from Columns.
type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// TableDef holds the table name and its ordered columns and constraints.
type TableDef struct {
	FQN         string
	Columns     []ColumnDef
	ForeignKeys []ForeignKey
}

// ColumnNames returns the column names in declaration order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// IndexDef is a plain (non-unique) secondary index.
type IndexDef struct {
	Name    string
	Table   string
	Columns []string
}
