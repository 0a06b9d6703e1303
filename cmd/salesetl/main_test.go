package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errb bytes.Buffer
	cmd := newRootCmd(&out, &errb)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errb.String(), err
}

func write(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestValidate_ReportsErrorsFromConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := write(t, filepath.Join(dir, "pipeline.yaml"), "storage:\n  kind: sqlite\n  db:\n    database: sales.db\nruntime:\n  batch_size: 0\n")

	out, _, err := execute(t, "validate", "--config", cfg, "--env-file", filepath.Join(dir, "none.env"))
	if err == nil {
		t.Fatalf("validate error = nil, want invalid configuration")
	}
	if !strings.Contains(out, "error: runtime.batch_size:") {
		t.Fatalf("stdout = %q, want batch_size issue", out)
	}
}

func TestValidate_AcceptsFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, _, err := execute(t, "validate",
		"--env-file", filepath.Join(dir, "none.env"),
		"--storage-kind", "sqlite",
		"--database", filepath.Join(dir, "sales.db"),
	)
	if err != nil {
		t.Fatalf("validate: %v (stdout %q)", err, out)
	}
	if !strings.Contains(out, "configuration is valid") {
		t.Fatalf("stdout = %q", out)
	}
}

func TestValidate_UnknownConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, _, err := execute(t, "validate", "--config", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("validate error = nil, want missing config file error")
	}
}

func TestRunThenAnalytics_SQLite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := write(t, filepath.Join(dir, "sales_data.json"),
		`[{"transaction_id":"T001","customer_id":null,"product":{"id":"P01","name":"Mouse","category":"Accessories","price":25.0},"quantity":-3,"date":"2023-01-05","region":"North"}]`)
	common := []string{
		"--env-file", filepath.Join(dir, "none.env"),
		"--storage-kind", "sqlite",
		"--database", filepath.Join(dir, "sales.db"),
		"--log-file", filepath.Join(dir, "etl_pipeline.log"),
		"--log-level", "info",
	}

	xlsx := filepath.Join(dir, "report.xlsx")
	out, stderr, err := execute(t, append([]string{"run", "--input", input, "--xlsx", xlsx}, common...)...)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr)
	}
	for _, want := range []string{
		"extracted: 1 records",
		"  - Missing Customer: 1",
		"  - Negative Quantities: 1",
		"loaded customers: 1 rows in 1 batches",
		"loaded transactions: 1 rows in 1 batches",
		"  North\t75.00",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("run stdout missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Fatalf("workbook: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "etl_pipeline.log")); err != nil {
		t.Fatalf("log file: %v", err)
	}

	out, stderr, err = execute(t, append([]string{"analytics", "--top-n", "1"}, common...)...)
	if err != nil {
		t.Fatalf("analytics: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(out, "  P01\tMouse\t75.00") || !strings.Contains(out, "  2023-01\t75.00") {
		t.Fatalf("analytics stdout:\n%s", out)
	}
}

func TestRun_SkipAnalyticsAndMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, _, err := execute(t, "run", "--skip-analytics",
		"--env-file", filepath.Join(dir, "none.env"),
		"--storage-kind", "sqlite",
		"--database", filepath.Join(dir, "sales.db"),
		"--log-file=",
		"--input", filepath.Join(dir, "absent.json"),
	)
	if err == nil || !strings.Contains(err.Error(), "extract failed") {
		t.Fatalf("run error = %v, want extract failure", err)
	}
}
