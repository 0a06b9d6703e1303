// Package analytics runs the read-only aggregate queries over a loaded
// sales schema.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"salesetl/internal/diag"
	"salesetl/internal/storage"
)

// DefaultTopN is the number of products ranked when TopN is unset.
const DefaultTopN = 5

// RegionSales is total sales for one region.
type RegionSales struct {
	Region     string
	TotalSales float64
}

// ProductSales is total sales for one product.
type ProductSales struct {
	ProductID   string
	ProductName string
	TotalSales  float64
}

// MonthlySales is total sales for one YYYY-MM month.
type MonthlySales struct {
	Month string
	Sales float64
}

// Report holds the three query results.
type Report struct {
	Regions  []RegionSales
	Products []ProductSales
	Monthly  []MonthlySales
}

// Runner runs the queries against Repo.
type Runner struct {
	Repo storage.Repository
	// TopN bounds the product ranking.
	TopN int
	// Parallelism bounds concurrent queries; 0 or 1 runs them in sequence.
	Parallelism int
	Sink        diag.Sink
}

// Run executes the three queries and returns the report. The first failing
// query cancels the others.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var (
		rep  Report
		d    = r.Repo.Dialect()
		sink = r.sink()
	)
	topN := r.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	limit := r.Parallelism
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	g.Go(func() error {
		res, err := r.Repo.Query(gctx, regionSQL(d))
		if err != nil {
			return fmt.Errorf("regional sales: %w", err)
		}
		for _, row := range res.Rows {
			rep.Regions = append(rep.Regions, RegionSales{Region: text(row[0]), TotalSales: number(row[1])})
		}
		sink.Record(diag.LevelInfo, "regional sales summary", diag.Fields{"rows": len(rep.Regions)})
		return nil
	})
	g.Go(func() error {
		res, err := r.Repo.Query(gctx, topProductsSQL(d, topN))
		if err != nil {
			return fmt.Errorf("top products: %w", err)
		}
		for _, row := range res.Rows {
			rep.Products = append(rep.Products, ProductSales{
				ProductID: text(row[0]), ProductName: text(row[1]), TotalSales: number(row[2]),
			})
		}
		sink.Record(diag.LevelInfo, "top products by sales", diag.Fields{"rows": len(rep.Products), "top_n": topN})
		return nil
	})
	g.Go(func() error {
		res, err := r.Repo.Query(gctx, monthlySQL(d))
		if err != nil {
			return fmt.Errorf("monthly trend: %w", err)
		}
		for _, row := range res.Rows {
			rep.Monthly = append(rep.Monthly, MonthlySales{Month: text(row[0]), Sales: number(row[1])})
		}
		sink.Record(diag.LevelInfo, "monthly sales trend", diag.Fields{"rows": len(rep.Monthly)})
		return nil
	})

	if err := g.Wait(); err != nil {
		sink.Record(diag.LevelError, "analytics query failed", diag.Fields{"error": err.Error()})
		return Report{}, err
	}
	return rep, nil
}

func regionSQL(d storage.Dialect) string {
	return fmt.Sprintf(`SELECT %[1]s AS region, SUM(%[2]s) AS total_sales
FROM %[3]s
WHERE %[2]s > 0
GROUP BY %[1]s
ORDER BY total_sales DESC`, d.QuoteIdent("region"), d.QuoteIdent("total_value"), d.QuoteIdent("transactions"))
}

func topProductsSQL(d storage.Dialect, n int) string {
	q := d.QuoteIdent
	return d.Limit(fmt.Sprintf(`SELECT p.%[1]s AS product_id, p.%[2]s AS product_name, SUM(t.%[3]s) AS total_sales
FROM %[4]s t
JOIN %[5]s p ON t.%[1]s = p.%[1]s
GROUP BY p.%[1]s, p.%[2]s
ORDER BY total_sales DESC`,
		q("product_id"), q("product_name"), q("total_value"), q("transactions"), q("products")), n)
}

func monthlySQL(d storage.Dialect) string {
	month := d.MonthBucket(d.QuoteIdent("date_std"))
	return fmt.Sprintf(`SELECT %[1]s AS month, SUM(%[2]s) AS monthly_sales
FROM %[3]s
WHERE %[4]s IS NOT NULL
GROUP BY %[1]s
ORDER BY month`, month, d.QuoteIdent("total_value"), d.QuoteIdent("transactions"), d.QuoteIdent("date_std"))
}

func (r *Runner) sink() diag.Sink {
	if r.Sink == nil {
		return diag.Discard
	}
	return r.Sink
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// number reads an aggregate; drivers return DECIMAL sums as float64, int64
// or decimal text.
func number(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f
	default:
		return 0
	}
}
