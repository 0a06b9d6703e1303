package analytics

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"salesetl/internal/diag"
	"salesetl/internal/records"
	"salesetl/internal/schema"
	"salesetl/internal/storage/sqldb"
	"salesetl/internal/storage/sqlite"
)

func seeded(t *testing.T) *sqldb.Repository {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r := sqldb.New(db, sqlite.Dialect{})
	t.Cleanup(r.Close)

	ctx := context.Background()
	if err := schema.Ensure(ctx, r); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := r.CopyFrom(ctx, "customers", records.CustomerColumns, [][]any{{"C1"}, {"C2"}}); err != nil {
		t.Fatalf("customers: %v", err)
	}
	if _, err := r.CopyFrom(ctx, "products", records.ProductColumns, [][]any{
		{"P1", "Widget", "Tools", 10.0},
		{"P2", "Gadget", "Toys", 5.0},
	}); err != nil {
		t.Fatalf("products: %v", err)
	}
	day := func(m time.Month, d int) time.Time { return time.Date(2023, m, d, 0, 0, 0, 0, time.UTC) }
	tx := [][]any{
		{"T1", "C1", "P1", int64(2), "2023-01-05", day(time.January, 5), "North", 20.0, false, false, false, false},
		{"T2", "C2", "P2", int64(3), "Jan 20 2023", day(time.January, 20), "South", 15.0, false, false, true, false},
		{"T3", "C1", "P1", int64(1), "2023-02-10", day(time.February, 10), "North", 10.0, false, false, false, false},
		{"T4", "C2", "P2", int64(0), nil, nil, "South", 0.0, false, true, true, false},
	}
	if _, err := r.CopyFrom(ctx, "transactions", records.TransactionColumns, tx); err != nil {
		t.Fatalf("transactions: %v", err)
	}
	return r
}

func TestRun_Aggregates(t *testing.T) {
	t.Parallel()

	var rec diag.Recorder
	run := &Runner{Repo: seeded(t), TopN: 5, Parallelism: 3, Sink: &rec}
	rep, err := run.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantRegions := []RegionSales{{"North", 30}, {"South", 15}}
	if len(rep.Regions) != len(wantRegions) {
		t.Fatalf("regions = %+v, want %+v", rep.Regions, wantRegions)
	}
	for i, w := range wantRegions {
		if rep.Regions[i] != w {
			t.Fatalf("regions[%d] = %+v, want %+v", i, rep.Regions[i], w)
		}
	}

	if len(rep.Products) != 2 || rep.Products[0].ProductID != "P1" || rep.Products[0].TotalSales != 30 ||
		rep.Products[0].ProductName != "Widget" {
		t.Fatalf("products = %+v", rep.Products)
	}

	wantMonthly := []MonthlySales{{"2023-01", 35}, {"2023-02", 10}}
	if len(rep.Monthly) != len(wantMonthly) {
		t.Fatalf("monthly = %+v, want %+v", rep.Monthly, wantMonthly)
	}
	for i, w := range wantMonthly {
		if rep.Monthly[i] != w {
			t.Fatalf("monthly[%d] = %+v, want %+v", i, rep.Monthly[i], w)
		}
	}

	for _, ev := range []string{"regional sales summary", "top products by sales", "monthly sales trend"} {
		if len(rec.Named(ev)) != 1 {
			t.Fatalf("event %q recorded %d times, want 1", ev, len(rec.Named(ev)))
		}
	}
}

func TestRun_TopNLimitsProducts(t *testing.T) {
	t.Parallel()

	rep, err := (&Runner{Repo: seeded(t), TopN: 1}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Products) != 1 || rep.Products[0].ProductID != "P1" {
		t.Fatalf("products = %+v, want only P1", rep.Products)
	}
}

func TestRun_MissingSchemaFails(t *testing.T) {
	t.Parallel()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r := sqldb.New(db, sqlite.Dialect{})
	t.Cleanup(r.Close)

	var rec diag.Recorder
	_, err = (&Runner{Repo: r, Parallelism: 2, Sink: &rec}).Run(context.Background())
	if err == nil {
		t.Fatalf("Run() error = nil, want missing table error")
	}
	if !strings.Contains(err.Error(), "no such table") {
		t.Fatalf("error = %v, want no such table", err)
	}
	if len(rec.Named("analytics query failed")) != 1 {
		t.Fatalf("failure event not recorded: %+v", rec.Events())
	}
}

func TestNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want float64
	}{
		{float64(1.5), 1.5},
		{int64(7), 7},
		{"12.25", 12.25},
		{[]byte("3.50"), 3.5},
		{nil, 0},
		{"n/a", 0},
	}
	for _, tt := range tests {
		if got := number(tt.in); got != tt.want {
			t.Errorf("number(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDialectQueries(t *testing.T) {
	t.Parallel()

	d := sqlite.Dialect{}
	if q := topProductsSQL(d, 5); !strings.HasSuffix(q, "LIMIT 5") {
		t.Fatalf("top products query = %q, want LIMIT 5 suffix", q)
	}
	if q := monthlySQL(d); !strings.Contains(q, `strftime('%Y-%m', "date_std")`) {
		t.Fatalf("monthly query = %q, want strftime bucket", q)
	}
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	rep := Report{
		Regions:  []RegionSales{{"North", 30}},
		Products: []ProductSales{{"P1", "Widget", 30}},
		Monthly:  []MonthlySales{{"2023-01", 35}},
	}
	if err := WriteXLSX(path, rep); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	got := f.GetSheetList()
	want := []string{SheetRegions, SheetProducts, SheetMonthly}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	rows, err := f.GetRows(SheetProducts)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[0][1] != "product_name" || rows[1][1] != "Widget" {
		t.Fatalf("product rows = %v", rows)
	}
}
