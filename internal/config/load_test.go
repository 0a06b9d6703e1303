package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	p, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Job != "sales_etl" || p.Source.File.Path != "sales_data.json" || p.Storage.Kind != "mysql" {
		t.Fatalf("defaults = %+v", p)
	}
	if p.Storage.DB.Host != "localhost" || p.Storage.DB.Database != "sales_db" || p.Storage.DB.User != "root" {
		t.Fatalf("db defaults = %+v", p.Storage.DB)
	}
	if p.Runtime.BatchSize != 1000 || !p.Analytics.Enabled || p.Analytics.TopN != 5 {
		t.Fatalf("runtime/analytics defaults = %+v %+v", p.Runtime, p.Analytics)
	}
	if !p.Storage.ClearBeforeLoad || p.Storage.Transactional {
		t.Fatalf("storage flags = %+v", p.Storage)
	}
	if p.Logging.File != "etl_pipeline.log" || p.Metrics.Backend != "none" {
		t.Fatalf("logging/metrics defaults = %+v %+v", p.Logging, p.Metrics)
	}
	if issues := ValidatePipeline(p); HasErrors(issues) {
		t.Fatalf("defaults do not validate: %v", issues)
	}
}

func TestLoad_Precedence(t *testing.T) {
	cfgFile := writeFile(t, "pipeline.yaml", `
job: nightly
storage:
  kind: postgres
  db:
    host: db.internal
    database: sales
runtime:
  batch_size: 250
`)
	envFile := writeFile(t, ".env", "SALESETL_STORAGE_DB_PASSWORD=from-dotenv\nSALESETL_RUNTIME_BATCH_SIZE=500\n")
	t.Setenv("SALESETL_STORAGE_DB_HOST", "env-host")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("batch-size", 1000, "")
	fs.String("input", "sales_data.json", "")
	if err := fs.Parse([]string{"--batch-size=42"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	p, err := Load(LoadOptions{
		ConfigFile: cfgFile,
		EnvFile:    envFile,
		Flags:      fs,
		FlagKeys:   map[string]string{"batch-size": "runtime.batch_size", "input": "source.file.path"},
	})
	t.Cleanup(func() {
		os.Unsetenv("SALESETL_STORAGE_DB_PASSWORD")
		os.Unsetenv("SALESETL_RUNTIME_BATCH_SIZE")
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if p.Job != "nightly" || p.Storage.Kind != "postgres" || p.Storage.DB.Database != "sales" {
		t.Errorf("file values not applied: %+v", p)
	}
	if p.Storage.DB.Host != "env-host" {
		t.Errorf("host = %q, want env override", p.Storage.DB.Host)
	}
	if p.Storage.DB.Password != "from-dotenv" {
		t.Errorf("password = %q, want dotenv value", p.Storage.DB.Password)
	}
	if p.Runtime.BatchSize != 42 {
		t.Errorf("batch_size = %d, want flag value 42", p.Runtime.BatchSize)
	}
	if p.Source.File.Path != "sales_data.json" {
		t.Errorf("unset flag overrode path: %q", p.Source.File.Path)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	if _, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Fatalf("Load with missing config file succeeded")
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	if _, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), ".env")}); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_UnknownFlagBinding(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if _, err := Load(LoadOptions{Flags: fs, FlagKeys: map[string]string{"nope": "job"}}); err == nil {
		t.Fatalf("Load with unknown flag succeeded")
	}
}

func TestStorageParams(t *testing.T) {
	t.Parallel()

	s := Storage{Kind: "mysql", DB: DBConfig{Host: "h", Port: 3307, Database: "d", User: "u", Password: "p"}}
	got := s.Params()
	if got.Kind != "mysql" || got.HostPort(3306) != "h:3307" || got.Database != "d" || got.Password != "p" {
		t.Fatalf("Params = %+v", got)
	}
}
