package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SALESETL_STORAGE_DB_HOST.
const EnvPrefix = "SALESETL"

var defaults = map[string]any{
	"job":                       "sales_etl",
	"source.kind":               "file",
	"source.file.path":          "sales_data.json",
	"source.max_records":        0,
	"source.http.url":           "",
	"source.http.timeout":       "30s",
	"source.http.max_retries":   3,
	"storage.kind":              "mysql",
	"storage.db.host":           "localhost",
	"storage.db.port":           0,
	"storage.db.database":       "sales_db",
	"storage.db.user":           "root",
	"storage.db.password":       "",
	"storage.db.dsn":            "",
	"storage.clear_before_load": true,
	"storage.transactional":     false,
	"runtime.batch_size":        1000,
	"analytics.enabled":         true,
	"analytics.top_n":           5,
	"analytics.parallelism":     3,
	"analytics.xlsx_path":       "",
	"logging.level":             "info",
	"logging.file":              "etl_pipeline.log",
	"logging.max_size_mb":       10,
	"logging.max_backups":       3,
	"logging.console":           false,
	"metrics.backend":           "none",
	"metrics.pushgateway_url":   "",
	"metrics.datadog_addr":      "",
}

// LoadOptions say where configuration comes from besides the defaults.
type LoadOptions struct {
	// ConfigFile is a JSON, YAML or TOML file; empty skips it.
	ConfigFile string
	// EnvFile is a dotenv file exported into the environment before lookup.
	// A missing file is ignored.
	EnvFile string
	// Flags and FlagKeys bind command-line flags (by flag name) to config
	// keys. Only flags the user set override lower layers.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

// Load resolves the configuration.
func Load(opts LoadOptions) (Pipeline, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Pipeline{}, fmt.Errorf("config: load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return Pipeline{}, fmt.Errorf("config: %w", err)
		}
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Pipeline{}, fmt.Errorf("config: read %s: %w", opts.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				return Pipeline{}, fmt.Errorf("config: unknown flag %q bound to %s", name, key)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Pipeline{}, fmt.Errorf("config: bind flag %s: %w", name, err)
			}
		}
	}

	var p Pipeline
	if err := v.Unmarshal(&p); err != nil {
		return Pipeline{}, fmt.Errorf("config: decode: %w", err)
	}
	return p, nil
}
