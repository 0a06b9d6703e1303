// Package schema defines the sales tables and creates them idempotently on
// any storage backend.
package schema

import "salesetl/internal/ddl"

// Table names, in load order.
const (
	Customers    = "customers"
	Products     = "products"
	Transactions = "transactions"
)

// CustomersTable, ProductsTable and TransactionsTable are the target tables.
var (
	CustomersTable = ddl.TableDef{
		FQN: Customers,
		Columns: []ddl.ColumnDef{
			{Name: "customer_id", Type: ddl.String(50), PrimaryKey: true},
		},
	}

	ProductsTable = ddl.TableDef{
		FQN: Products,
		Columns: []ddl.ColumnDef{
			{Name: "product_id", Type: ddl.String(30), PrimaryKey: true},
			{Name: "product_name", Type: ddl.String(150), Nullable: true},
			{Name: "category", Type: ddl.String(100), Nullable: true},
			{Name: "price", Type: ddl.Decimal(10, 2), Nullable: true},
		},
	}

	TransactionsTable = ddl.TableDef{
		FQN: Transactions,
		Columns: []ddl.ColumnDef{
			{Name: "transaction_id", Type: ddl.String(50), PrimaryKey: true},
			{Name: "customer_id", Type: ddl.String(50), Nullable: true},
			{Name: "product_id", Type: ddl.String(30), Nullable: true},
			{Name: "quantity", Type: ddl.Integer(), Nullable: true},
			{Name: "date", Type: ddl.String(100), Nullable: true},
			{Name: "date_std", Type: ddl.Date(), Nullable: true},
			{Name: "region", Type: ddl.String(100), Nullable: true},
			{Name: "total_value", Type: ddl.Decimal(12, 2), Nullable: true},
			{Name: "has_missing_customer", Type: ddl.Boolean(), Nullable: true},
			{Name: "had_negative_quantity", Type: ddl.Boolean(), Nullable: true},
			{Name: "had_date_format_issue", Type: ddl.Boolean(), Nullable: true},
			{Name: "has_suspicious_values", Type: ddl.Boolean(), Nullable: true},
		},
		ForeignKeys: []ddl.ForeignKey{
			{Columns: []string{"customer_id"}, RefTable: Customers, RefColumns: []string{"customer_id"}},
			{Columns: []string{"product_id"}, RefTable: Products, RefColumns: []string{"product_id"}},
		},
	}
)

// Tables returns the table definitions in dependency order.
func Tables() []ddl.TableDef {
	return []ddl.TableDef{CustomersTable, ProductsTable, TransactionsTable}
}

// Indexes are the secondary indexes on transactions.
func Indexes() []ddl.IndexDef {
	return []ddl.IndexDef{
		{Name: "idx_transactions_region", Table: Transactions, Columns: []string{"region"}},
		{Name: "idx_transactions_date_std", Table: Transactions, Columns: []string{"date_std"}},
		{Name: "idx_transactions_product_id", Table: Transactions, Columns: []string{"product_id"}},
	}
}
