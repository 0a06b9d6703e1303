package transformer

import (
	"salesetl/internal/diag"
	"salesetl/internal/records"
)

// Normalize flattens the nested product object of every record into
// product_id, product_name, category and price. A record without a product
// object gets nil for all four. Values that cannot be read as the expected
// scalar become nil and are reported to sink; nothing here fails the run.
func Normalize(in []records.RawRecord, sink diag.Sink) []records.FlatRecord {
	if sink == nil {
		sink = diag.Discard
	}
	out := make([]records.FlatRecord, 0, len(in))
	for i, raw := range in {
		n := normalizer{index: i, sink: sink}
		fr := records.FlatRecord{
			TransactionID: n.text(records.KeyTransactionID, raw[records.KeyTransactionID]),
			CustomerID:    n.text(records.KeyCustomerID, raw[records.KeyCustomerID]),
			Date:          n.text(records.KeyDate, raw[records.KeyDate]),
			Region:        n.text(records.KeyRegion, raw[records.KeyRegion]),
			Quantity:      n.integer(records.KeyQuantity, raw[records.KeyQuantity]),
		}
		if p, ok := raw[records.KeyProduct].(map[string]any); ok {
			fr.ProductID = n.text("product_id", p[records.KeyProductID])
			fr.ProductName = n.text("product_name", p[records.KeyProductName])
			fr.Category = n.text("category", p[records.KeyProductCategory])
			fr.Price = p[records.KeyProductPrice]
		}
		out = append(out, fr)
	}
	return out
}

type normalizer struct {
	index int
	sink  diag.Sink
}

func (n normalizer) text(field string, v any) *string {
	s, ok := text(v)
	if !ok {
		n.reject(field, v)
	}
	return s
}

func (n normalizer) integer(field string, v any) *int64 {
	i, ok := integer(v)
	if !ok {
		n.reject(field, v)
	}
	return i
}

func (n normalizer) reject(field string, v any) {
	n.sink.Record(diag.LevelWarn, "unreadable field value", diag.Fields{
		"row":   n.index,
		"field": field,
		"type":  describe(v),
	})
}
