// Package quality runs the ordered data-quality detectors over derived rows.
//
// Detectors run in a fixed order and each may only raise row flags or
// repair the single field it owns. None of them drops rows or fails the run.
package quality

import (
	"strings"

	"salesetl/internal/diag"
	"salesetl/internal/records"
)

// Category names a defect class. Values are the summary keys.
type Category string

const (
	MissingCustomer       Category = "missing_customer"
	NegativeQuantities    Category = "negative_quantities"
	DuplicateTransactions Category = "duplicate_transactions"
	MissingProductInfo    Category = "missing_product_info"
	InvalidPrices         Category = "invalid_prices"
	DateIssues            Category = "date_issues"
	MissingTransactionIDs Category = "missing_transaction_ids"
	SuspiciousValues      Category = "suspicious_values"
)

// Label renders the category for humans: "Missing Customer".
func (c Category) Label() string {
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Business thresholds for suspicious rows.
const (
	MaxQuantity   = 1000
	MinPrice      = 0.01
	MaxTotalValue = 100000
)

type detector struct {
	category Category
	level    diag.Level
	message  string
	detect   func(rows []records.WorkingRow) int
}

// Order matters: the negative-quantity repair runs before the suspicious
// check reads quantity and total_value.
var detectors = []detector{
	{MissingCustomer, diag.LevelWarn, "rows with missing customer_id", detectMissingCustomer},
	{NegativeQuantities, diag.LevelWarn, "negative quantities repaired", detectNegativeQuantity},
	{DuplicateTransactions, diag.LevelWarn, "duplicate transaction ids", countDuplicateIDs},
	{MissingProductInfo, diag.LevelWarn, "rows with missing product info", countMissingProduct},
	{InvalidPrices, diag.LevelWarn, "rows with invalid prices", countInvalidPrice},
	{DateIssues, diag.LevelWarn, "unparseable dates", detectDateIssues},
	{MissingTransactionIDs, diag.LevelError, "rows with missing transaction_id", countMissingID},
	{SuspiciousValues, diag.LevelWarn, "rows with suspicious values", detectSuspicious},
}

// Categories lists every category in detector order.
func Categories() []Category {
	out := make([]Category, len(detectors))
	for i, d := range detectors {
		out[i] = d.category
	}
	return out
}

// Checker runs the detectors and reports through Sink.
type Checker struct {
	Sink diag.Sink
}

// Check runs every detector over rows, mutating them in place, and returns
// the per-category counts. The summary is reported once.
func (c Checker) Check(rows []records.WorkingRow) Summary {
	sink := c.Sink
	if sink == nil {
		sink = diag.Discard
	}
	s := Summary{counts: make(map[Category]int, len(detectors))}
	for _, d := range detectors {
		n := d.detect(rows)
		if n == 0 {
			continue
		}
		s.counts[d.category] = n
		sink.Record(d.level, d.message, diag.Fields{"category": string(d.category), "count": n})
	}
	s.report(sink)
	return s
}
