package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"salesetl/internal/config"
	"salesetl/internal/pipeline"
)

var analyticsFlags = map[string]string{
	"xlsx":  "analytics.xlsx_path",
	"top-n": "analytics.top_n",
}

func newAnalyticsCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Run the sales analytics against an already loaded store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadConfig(cmd, g, analyticsFlags)
			if err != nil {
				return err
			}
			if printIssues(cmd.ErrOrStderr(), config.ValidatePipeline(p)) {
				return errors.New("configuration is invalid")
			}
			sink, closeLog, err := setupLogging(cmd, p)
			if err != nil {
				return err
			}
			defer closeLog()

			rep, err := (&pipeline.Runner{Config: p, Sink: sink}).Analyze(cmd.Context())
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			if p.Analytics.XLSXPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "workbook written to %s\n", p.Analytics.XLSXPath)
			}
			return nil
		},
	}
	cmd.Flags().String("xlsx", "", "write the report to this workbook")
	cmd.Flags().Int("top-n", 0, "number of products in the ranking")
	return cmd
}
