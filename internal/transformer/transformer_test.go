package transformer

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"salesetl/internal/diag"
	"salesetl/internal/records"
	"salesetl/internal/transformer/datestd"
)

func raw(m map[string]any) records.RawRecord { return records.RawRecord(m) }

func strOf(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestNormalize_FlattensProduct(t *testing.T) {
	t.Parallel()

	in := []records.RawRecord{
		raw(map[string]any{
			"transaction_id": "T001",
			"customer_id":    "C1",
			"product": map[string]any{
				"id": "P01", "name": "Mouse", "category": "Accessories", "price": json.Number("25.0"),
			},
			"quantity": json.Number("-3"),
			"date":     "2023-01-05",
			"region":   "North",
		}),
		raw(map[string]any{"transaction_id": "T002"}),
	}

	out := Normalize(in, nil)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	got := out[0]
	if strOf(got.ProductID) != "P01" || strOf(got.ProductName) != "Mouse" || strOf(got.Category) != "Accessories" {
		t.Fatalf("product fields = %q %q %q", strOf(got.ProductID), strOf(got.ProductName), strOf(got.Category))
	}
	if got.Price != json.Number("25.0") {
		t.Fatalf("price = %#v, want raw json.Number", got.Price)
	}
	if got.Quantity == nil || *got.Quantity != -3 {
		t.Fatalf("quantity = %v, want -3", got.Quantity)
	}

	missing := out[1]
	if missing.ProductID != nil || missing.ProductName != nil || missing.Category != nil || missing.Price != nil {
		t.Fatalf("record without product should have nil product fields, got %+v", missing)
	}
	if missing.CustomerID != nil || missing.Quantity != nil {
		t.Fatalf("absent keys should be nil, got %+v", missing)
	}
}

func TestNormalize_ReportsUnreadableValues(t *testing.T) {
	t.Parallel()

	var rec diag.Recorder
	out := Normalize([]records.RawRecord{raw(map[string]any{
		"transaction_id": "T1",
		"quantity":       "two",
		"region":         []any{"x"},
	})}, &rec)

	if out[0].Quantity != nil || out[0].Region != nil {
		t.Fatalf("unreadable values should be nil, got quantity=%v region=%v", out[0].Quantity, out[0].Region)
	}
	if n := len(rec.Named("unreadable field value")); n != 2 {
		t.Fatalf("diagnostics = %d, want 2", n)
	}
}

/*
TestInteger_Coercions checks the quantity coercion table: whole numbers in
any JSON spelling are accepted, fractions and words are not.
*/
func TestInteger_Coercions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     any
		want   int64
		wantOK bool
		isNil  bool
	}{
		{in: json.Number("7"), want: 7, wantOK: true},
		{in: json.Number("3.0"), want: 3, wantOK: true},
		{in: json.Number("2.5"), wantOK: false, isNil: true},
		{in: " 12 ", want: 12, wantOK: true},
		{in: "abc", wantOK: false, isNil: true},
		{in: nil, wantOK: true, isNil: true},
		{in: true, wantOK: false, isNil: true},
		{in: json.Number("1e20"), wantOK: false, isNil: true},
		{in: json.Number("99999999999999999999"), wantOK: false, isNil: true},
		{in: "-1e19", wantOK: false, isNil: true},
		{in: float64(1 << 63), wantOK: false, isNil: true},
		{in: json.Number("-9223372036854775808"), want: math.MinInt64, wantOK: true},
	}
	for _, tc := range tests {
		got, ok := integer(tc.in)
		if ok != tc.wantOK {
			t.Fatalf("integer(%#v) ok = %v, want %v", tc.in, ok, tc.wantOK)
		}
		if tc.isNil {
			if got != nil {
				t.Fatalf("integer(%#v) = %d, want nil", tc.in, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("integer(%#v) = %v, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNumeric_NonNumericBecomesNil(t *testing.T) {
	t.Parallel()

	for _, v := range []any{"cheap", nil, true, map[string]any{}, "NaN"} {
		if got := numeric(v); got != nil {
			t.Fatalf("numeric(%#v) = %v, want nil", v, *got)
		}
	}
	if got := numeric("19.99"); got == nil || *got != 19.99 {
		t.Fatalf("numeric(\"19.99\") = %v, want 19.99", got)
	}
}

func newDeriver() Deriver {
	return Deriver{Dates: datestd.Standardizer{Reference: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
}

func TestDerive_FillsCustomerAndComputesTotal(t *testing.T) {
	t.Parallel()

	q := int64(4)
	in := []records.FlatRecord{
		{TransactionID: records.Ptr("T1"), Quantity: &q, Price: json.Number("2.5"), Date: records.Ptr("2023-01-05")},
		{TransactionID: records.Ptr("T2"), CustomerID: records.Ptr("C9"), Quantity: &q, Price: "n/a", Date: records.Ptr("01/05/2023")},
		{TransactionID: records.Ptr("T3"), Price: json.Number("1")},
	}

	rows := newDeriver().Derive(in)

	if strOf(rows[0].CustomerID) != records.UnknownCustomer {
		t.Fatalf("customer = %q, want %q", strOf(rows[0].CustomerID), records.UnknownCustomer)
	}
	if rows[0].Has(records.FlagMissingCustomer) {
		t.Fatalf("missing-customer flag must not be set by Derive")
	}
	if rows[0].TotalValue == nil || *rows[0].TotalValue != 10 {
		t.Fatalf("total = %v, want 10", rows[0].TotalValue)
	}
	if rows[0].Has(records.FlagDateFormatIssue) {
		t.Fatalf("canonical date should not seed the format flag")
	}

	if strOf(rows[1].CustomerID) != "C9" {
		t.Fatalf("existing customer overwritten: %q", strOf(rows[1].CustomerID))
	}
	if rows[1].Price != nil || rows[1].TotalValue != nil {
		t.Fatalf("non-numeric price should give nil price and total, got %v %v", rows[1].Price, rows[1].TotalValue)
	}
	if strOf(rows[1].DateStd) != "2023-01-05" {
		t.Fatalf("date_std = %q, want 2023-01-05", strOf(rows[1].DateStd))
	}
	if !rows[1].Has(records.FlagDateFormatIssue) {
		t.Fatalf("reformatted date should seed the format flag")
	}

	if rows[2].TotalValue != nil {
		t.Fatalf("nil quantity should give nil total, got %v", *rows[2].TotalValue)
	}
	if !rows[2].Has(records.FlagDateFormatIssue) {
		t.Fatalf("nil date should seed the format flag")
	}
}
