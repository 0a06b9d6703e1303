package records

// Flag is a per-row data-quality marker.
type Flag uint8

const (
	FlagMissingCustomer Flag = 1 << iota
	FlagNegativeQuantity
	FlagDateFormatIssue
	FlagSuspiciousValues
)

// String returns the column name the flag is stored under.
func (f Flag) String() string {
	switch f {
	case FlagMissingCustomer:
		return "has_missing_customer"
	case FlagNegativeQuantity:
		return "had_negative_quantity"
	case FlagDateFormatIssue:
		return "had_date_format_issue"
	case FlagSuspiciousValues:
		return "has_suspicious_values"
	default:
		return "unknown_flag"
	}
}

// WorkingRow is the enriched row mutated by the quality checks.
//
// Flags can only be raised. There is no way to clear one, so a flag set by an
// earlier pass survives every later pass.
type WorkingRow struct {
	TransactionID *string
	CustomerID    *string
	ProductID     *string
	ProductName   *string
	Category      *string
	Price         *float64
	Quantity      *int64
	Date          *string
	DateStd       *string
	Region        *string
	TotalValue    *float64

	flags Flag
}

// Raise sets f on the row.
func (r *WorkingRow) Raise(f Flag) { r.flags |= f }

// Has reports whether f is set.
func (r WorkingRow) Has(f Flag) bool { return r.flags&f == f }

// Flags returns the raised flags as a bitmask.
func (r WorkingRow) Flags() Flag { return r.flags }

// UnknownCustomer replaces a missing customer_id.
const UnknownCustomer = "Unknown"

// LineTotal is quantity * price, or nil when either is nil.
func LineTotal(quantity *int64, price *float64) *float64 {
	if quantity == nil || price == nil {
		return nil
	}
	v := float64(*quantity) * *price
	return &v
}
