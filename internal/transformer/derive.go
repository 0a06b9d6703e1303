package transformer

import (
	"salesetl/internal/diag"
	"salesetl/internal/records"
	"salesetl/internal/transformer/datestd"
)

// Deriver computes the working fields of each flattened record.
type Deriver struct {
	Dates datestd.Standardizer
	Sink  diag.Sink
}

// Derive fills missing customer ids with records.UnknownCustomer, coerces
// price to a number (non-numeric becomes nil), standardizes the date,
// computes total_value and seeds had_date_format_issue wherever date and
// date_std differ as strings. A nil date never equals anything, so it seeds
// the flag too.
func (d Deriver) Derive(in []records.FlatRecord) []records.WorkingRow {
	sink := d.Sink
	if sink == nil {
		sink = diag.Discard
	}
	out := make([]records.WorkingRow, 0, len(in))
	var repaired, unpriced int
	for _, fr := range in {
		row := records.WorkingRow{
			TransactionID: fr.TransactionID,
			CustomerID:    fr.CustomerID,
			ProductID:     fr.ProductID,
			ProductName:   fr.ProductName,
			Category:      fr.Category,
			Quantity:      fr.Quantity,
			Date:          fr.Date,
			Region:        fr.Region,
		}
		if row.CustomerID == nil {
			row.CustomerID = records.Ptr(records.UnknownCustomer)
			repaired++
		}
		row.Price = numeric(fr.Price)
		if row.Price == nil && fr.Price != nil {
			unpriced++
		}
		row.DateStd = d.Dates.Standardize(row.Date)
		row.TotalValue = records.LineTotal(row.Quantity, row.Price)
		if row.Date == nil || row.DateStd == nil || *row.Date != *row.DateStd {
			row.Raise(records.FlagDateFormatIssue)
		}
		out = append(out, row)
	}
	sink.Record(diag.LevelInfo, "fields derived", diag.Fields{
		"rows":               len(out),
		"customers_filled":   repaired,
		"prices_not_numeric": unpriced,
	})
	return out
}
