// Command salesetl extracts sales records from a JSON file, repairs and
// flags data-quality defects, loads customers, products and transactions
// into a relational store and runs the sales analytics over the result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"salesetl/internal/config"
	"salesetl/internal/diag"

	// register all backends with the storage factory.
	_ "salesetl/internal/storage/all"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "salesetl: %v\n", err)
		os.Exit(1)
	}
}

// rootFlags are the flags shared by every subcommand, keyed by config key.
var rootFlags = map[string]string{
	"log-level":       "logging.level",
	"log-file":        "logging.file",
	"log-console":     "logging.console",
	"metrics-backend": "metrics.backend",
	"pushgateway-url": "metrics.pushgateway_url",
	"datadog-addr":    "metrics.datadog_addr",
	"storage-kind":    "storage.kind",
	"dsn":             "storage.db.dsn",
	"database":        "storage.db.database",
}

type globalOpts struct {
	configFile string
	envFile    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalOpts
	root := &cobra.Command{
		Use:           "salesetl",
		Short:         "Sales data ETL: extract, clean, load and analyze",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "pipeline config file (JSON, YAML or TOML)")
	pf.StringVar(&g.envFile, "env-file", ".env", "dotenv file exported before reading SALESETL_* variables")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "rotated log file; empty string disables file logging")
	pf.Bool("log-console", false, "human-readable console logs instead of JSON")
	pf.String("metrics-backend", "", "metrics backend: none, prompush or datadog")
	pf.String("pushgateway-url", "", "Pushgateway base URL for the prompush backend")
	pf.String("datadog-addr", "", "DogStatsD address for the datadog backend")
	pf.String("storage-kind", "", "storage backend: mysql, postgres, mssql or sqlite")
	pf.String("dsn", "", "database DSN; overrides the discrete connection settings")
	pf.String("database", "", "database name, or file path for sqlite")

	root.AddCommand(
		newRunCmd(&g),
		newValidateCmd(&g),
		newAnalyticsCmd(&g),
	)
	return root
}

// loadConfig resolves the configuration for cmd, binding rootFlags plus the
// command's own flag keys.
func loadConfig(cmd *cobra.Command, g *globalOpts, local map[string]string) (config.Pipeline, error) {
	keys := make(map[string]string, len(rootFlags)+len(local))
	for k, v := range rootFlags {
		keys[k] = v
	}
	for k, v := range local {
		keys[k] = v
	}
	return config.Load(config.LoadOptions{
		ConfigFile: g.configFile,
		EnvFile:    g.envFile,
		Flags:      cmd.Flags(),
		FlagKeys:   keys,
	})
}

// printIssues writes one "severity: path: message" line per issue and
// reports whether any of them is an error.
func printIssues(w io.Writer, issues []config.Issue) bool {
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.HasErrors(issues)
}

// setupLogging builds the process sink. The returned func releases the log file.
func setupLogging(cmd *cobra.Command, p config.Pipeline) (diag.Sink, func(), error) {
	l, closer, err := diag.Setup(diag.Options{
		Level:      p.Logging.Level,
		Console:    p.Logging.Console,
		File:       p.Logging.File,
		MaxSizeMB:  p.Logging.MaxSizeMB,
		MaxBackups: p.Logging.MaxBackups,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	return diag.NewLogger(l), func() { _ = closer.Close() }, nil
}
