package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsonparser "salesetl/internal/parser/json"
)

func writeSales(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sales_data.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write sales fixture: %v", err)
	}
	return p
}

func TestLocal_OpenFeedsRecordDecoder(t *testing.T) {
	t.Parallel()

	src := NewLocal(writeSales(t, `[
		{"transaction_id":"T001","customer_id":"C1","quantity":2,"price":19.99},
		{"transaction_id":"T002","customer_id":null,"quantity":-1,"price":5},
		{"transaction_id":"T003","quantity":1,"price":"n/a"}
	]`))

	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	recs, err := jsonparser.DecodeRecords(rc, jsonparser.Options{MaxRecords: 2})
	if err != nil {
		t.Fatalf("DecodeRecords() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2 (bounded)", len(recs))
	}
	if recs[1]["transaction_id"] != "T002" {
		t.Fatalf("record 1 id = %v, want T002", recs[1]["transaction_id"])
	}
	if recs[0]["quantity"] != json.Number("2") {
		t.Fatalf("quantity = %#v, want json.Number 2", recs[0]["quantity"])
	}
}

func TestLocal_OpenErrors(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name         string
		path         func(t *testing.T) string
		ctx          context.Context
		wantIs       error
		wantContains string
	}{
		{
			name:         "missing_input_keeps_not_exist",
			path:         func(t *testing.T) string { return filepath.Join(t.TempDir(), "sales_data.json") },
			ctx:          context.Background(),
			wantIs:       os.ErrNotExist,
			wantContains: "sales_data.json",
		},
		{
			name:   "canceled_before_open",
			path:   func(t *testing.T) string { return writeSales(t, `[]`) },
			ctx:    canceled,
			wantIs: context.Canceled,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rc, err := NewLocal(tc.path(t)).Open(tc.ctx)
			if rc != nil {
				_ = rc.Close()
				t.Fatalf("Open() returned a reader alongside error %v", err)
			}
			if !errors.Is(err, tc.wantIs) {
				t.Fatalf("Open() error = %v, want errors.Is %v", err, tc.wantIs)
			}
			if tc.wantContains != "" && !strings.Contains(err.Error(), tc.wantContains) {
				t.Fatalf("error %q does not mention %q", err, tc.wantContains)
			}
		})
	}
}

func TestLocal_Path(t *testing.T) {
	t.Parallel()

	if got := NewLocal("in/sales.json").Path(); got != "in/sales.json" {
		t.Fatalf("Path() = %q, want in/sales.json", got)
	}
}
