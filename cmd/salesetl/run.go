package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"salesetl/internal/analytics"
	"salesetl/internal/config"
	"salesetl/internal/pipeline"
)

var runFlags = map[string]string{
	"source-kind":   "source.kind",
	"input":         "source.file.path",
	"url":           "source.http.url",
	"max-records":   "source.max_records",
	"batch-size":    "runtime.batch_size",
	"xlsx":          "analytics.xlsx_path",
	"top-n":         "analytics.top_n",
	"clear":         "storage.clear_before_load",
	"transactional": "storage.transactional",
}

func newRunCmd(g *globalOpts) *cobra.Command {
	var skipAnalytics bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: schema, extract, transform, load, analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadConfig(cmd, g, runFlags)
			if err != nil {
				return err
			}
			if skipAnalytics {
				p.Analytics.Enabled = false
			}
			if printIssues(cmd.ErrOrStderr(), config.ValidatePipeline(p)) {
				return errors.New("configuration is invalid")
			}

			sink, closeLog, err := setupLogging(cmd, p)
			if err != nil {
				return err
			}
			defer closeLog()
			flush := setupMetrics(p, sink)
			defer flush()

			res, err := (&pipeline.Runner{Config: p, Sink: sink}).Run(cmd.Context())
			printResult(cmd.OutOrStdout(), res)
			if err != nil {
				return err
			}
			if res.AnalyticsErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "analytics: %v\n", res.AnalyticsErr)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("source-kind", "", "input source: file or http")
	f.String("input", "", "path to the JSON input file")
	f.String("url", "", "URL of the JSON input for the http source")
	f.Int("max-records", 0, "stop after this many records; 0 reads all")
	f.Int("batch-size", 0, "rows per batch write")
	f.String("xlsx", "", "write the analytics report to this workbook")
	f.Int("top-n", 0, "number of products in the ranking")
	f.Bool("clear", true, "delete existing rows before loading")
	f.Bool("transactional", false, "load every table in one transaction")
	f.BoolVar(&skipAnalytics, "skip-analytics", false, "do not run the analytics queries")
	return cmd
}

func printResult(w io.Writer, res pipeline.Result) {
	if res.RunID == "" {
		return
	}
	fmt.Fprintf(w, "run %s\n", res.RunID)
	fmt.Fprintf(w, "extracted: %d records\n", res.Extracted)
	if entries := res.Quality.Entries(); len(entries) > 0 {
		fmt.Fprintln(w, "data quality issues:")
		for _, e := range entries {
			fmt.Fprintf(w, "  - %s: %d\n", e.Category.Label(), e.Count)
		}
	}
	for _, t := range res.Load.Tables {
		fmt.Fprintf(w, "loaded %s: %d rows in %d batches\n", t.Table, t.Rows, t.Batches)
	}
	if res.Analytics != nil {
		printReport(w, *res.Analytics)
	}
}

func printReport(w io.Writer, rep analytics.Report) {
	fmt.Fprintln(w, "regional sales:")
	for _, r := range rep.Regions {
		fmt.Fprintf(w, "  %s\t%.2f\n", r.Region, r.TotalSales)
	}
	fmt.Fprintln(w, "top products:")
	for _, p := range rep.Products {
		fmt.Fprintf(w, "  %s\t%s\t%.2f\n", p.ProductID, p.ProductName, p.TotalSales)
	}
	fmt.Fprintln(w, "monthly trend:")
	for _, m := range rep.Monthly {
		fmt.Fprintf(w, "  %s\t%.2f\n", m.Month, m.Sales)
	}
}
