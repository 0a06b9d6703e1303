package analytics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sheet names written by WriteXLSX.
const (
	SheetRegions  = "Regional Sales"
	SheetProducts = "Top Products"
	SheetMonthly  = "Monthly Trend"
)

// WriteXLSX exports rep as a workbook with one sheet per query.
func WriteXLSX(path string, rep Report) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("xlsx close: %w", cerr)
		}
	}()

	regions := [][]any{{"region", "total_sales"}}
	for _, r := range rep.Regions {
		regions = append(regions, []any{r.Region, r.TotalSales})
	}
	products := [][]any{{"product_id", "product_name", "total_sales"}}
	for _, p := range rep.Products {
		products = append(products, []any{p.ProductID, p.ProductName, p.TotalSales})
	}
	monthly := [][]any{{"month", "monthly_sales"}}
	for _, m := range rep.Monthly {
		monthly = append(monthly, []any{m.Month, m.Sales})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetRegions, regions},
		{SheetProducts, products},
		{SheetMonthly, monthly},
	}
	for i, s := range sheets {
		idx, err := f.NewSheet(s.name)
		if err != nil {
			return fmt.Errorf("xlsx sheet %q: %w", s.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("xlsx sheet %q row %d: %w", s.name, r+1, err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx save %s: %w", path, err)
	}
	return nil
}
