package quality

import (
	"math"

	"salesetl/internal/records"
)

// detectMissingCustomer keys off the sentinel because the deriver already
// replaced the nil id.
func detectMissingCustomer(rows []records.WorkingRow) int {
	n := 0
	for i := range rows {
		if c := rows[i].CustomerID; c != nil && *c == records.UnknownCustomer {
			rows[i].Raise(records.FlagMissingCustomer)
			n++
		}
	}
	return n
}

// detectNegativeQuantity flips negative quantities and recomputes the line
// total from the repaired quantity. MinInt64 has no positive counterpart and
// is clamped to MaxInt64.
func detectNegativeQuantity(rows []records.WorkingRow) int {
	n := 0
	for i := range rows {
		q := rows[i].Quantity
		if q == nil || *q >= 0 {
			continue
		}
		abs := -*q
		if *q == math.MinInt64 {
			abs = math.MaxInt64
		}
		rows[i].Quantity = &abs
		rows[i].TotalValue = records.LineTotal(rows[i].Quantity, rows[i].Price)
		rows[i].Raise(records.FlagNegativeQuantity)
		n++
	}
	return n
}

// countDuplicateIDs counts every row whose transaction_id appears more than
// once, not just the repeats. Rows without an id are not duplicates.
func countDuplicateIDs(rows []records.WorkingRow) int {
	seen := make(map[string]int, len(rows))
	for _, r := range rows {
		if r.TransactionID != nil {
			seen[*r.TransactionID]++
		}
	}
	n := 0
	for _, c := range seen {
		if c > 1 {
			n += c
		}
	}
	return n
}

func countMissingProduct(rows []records.WorkingRow) int {
	n := 0
	for _, r := range rows {
		if r.ProductID == nil || r.ProductName == nil || r.Price == nil {
			n++
		}
	}
	return n
}

func countInvalidPrice(rows []records.WorkingRow) int {
	n := 0
	for _, r := range rows {
		if r.Price == nil || *r.Price <= 0 {
			n++
		}
	}
	return n
}

// detectDateIssues catches dates that failed to parse at all. It shares the
// had_date_format_issue flag with the reformat seeding done by the deriver.
func detectDateIssues(rows []records.WorkingRow) int {
	n := 0
	for i := range rows {
		if rows[i].Date != nil && rows[i].DateStd == nil {
			rows[i].Raise(records.FlagDateFormatIssue)
			n++
		}
	}
	return n
}

func countMissingID(rows []records.WorkingRow) int {
	n := 0
	for _, r := range rows {
		if r.TransactionID == nil {
			n++
		}
	}
	return n
}

func detectSuspicious(rows []records.WorkingRow) int {
	n := 0
	for i := range rows {
		if suspicious(rows[i]) {
			rows[i].Raise(records.FlagSuspiciousValues)
			n++
		}
	}
	return n
}

// suspicious compares only present values; a nil operand never trips a bound.
func suspicious(r records.WorkingRow) bool {
	switch {
	case r.Quantity != nil && *r.Quantity > MaxQuantity:
		return true
	case r.Price != nil && *r.Price < MinPrice:
		return true
	case r.TotalValue != nil && *r.TotalValue > MaxTotalValue:
		return true
	}
	return false
}
