// Package records defines the row shapes that flow through the sales pipeline:
// the raw decoded input, the flattened record, the mutable working row, and the
// three normalized output rows.
package records

import "time"

// RawRecord is one decoded input object. Numbers are json.Number values.
// It is treated as read-only after extraction.
type RawRecord map[string]any

// Input keys of a RawRecord.
const (
	KeyTransactionID = "transaction_id"
	KeyCustomerID    = "customer_id"
	KeyProduct       = "product"
	KeyQuantity      = "quantity"
	KeyDate          = "date"
	KeyRegion        = "region"

	KeyProductID       = "id"
	KeyProductName     = "name"
	KeyProductCategory = "category"
	KeyProductPrice    = "price"
)

// FlatRecord is a RawRecord with the nested product expanded into scalar
// fields. Price is left as decoded; FieldDeriver coerces it.
type FlatRecord struct {
	TransactionID *string
	CustomerID    *string
	ProductID     *string
	ProductName   *string
	Category      *string
	Price         any
	Quantity      *int64
	Date          *string
	Region        *string
}

// Customer is one row of the customers table.
type Customer struct {
	CustomerID string
}

// Product is one row of the products table.
type Product struct {
	ProductID   string
	ProductName *string
	Category    *string
	Price       *float64
}

// Transaction is one row of the transactions table.
type Transaction struct {
	TransactionID      *string
	CustomerID         *string
	ProductID          *string
	Quantity           *int64
	Date               *string
	DateStd            *time.Time
	Region             *string
	TotalValue         *float64
	HasMissingCustomer bool
	HadNegativeQty     bool
	HadDateFormatIssue bool
	HasSuspicious      bool
}

// Column orders used when rows are handed to storage. They match the table
// definitions in internal/schema.
var (
	CustomerColumns = []string{"customer_id"}
	ProductColumns  = []string{"product_id", "product_name", "category", "price"}

	TransactionColumns = []string{
		"transaction_id", "customer_id", "product_id", "quantity",
		"date", "date_std", "region", "total_value",
		"has_missing_customer", "had_negative_quantity",
		"had_date_format_issue", "has_suspicious_values",
	}
)

// Values returns the row in CustomerColumns order.
func (c Customer) Values() []any { return []any{c.CustomerID} }

// Values returns the row in ProductColumns order.
func (p Product) Values() []any {
	return []any{p.ProductID, deref(p.ProductName), deref(p.Category), deref(p.Price)}
}

// Values returns the row in TransactionColumns order; nil pointers become
// untyped nil so drivers bind SQL NULL.
func (t Transaction) Values() []any {
	return []any{
		deref(t.TransactionID), deref(t.CustomerID), deref(t.ProductID), deref(t.Quantity),
		deref(t.Date), deref(t.DateStd), deref(t.Region), deref(t.TotalValue),
		t.HasMissingCustomer, t.HadNegativeQty, t.HadDateFormatIssue, t.HasSuspicious,
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
