// Package config defines the configuration model of the sales ETL and loads
// it from defaults, an optional config file, a .env file, SALESETL_*
// environment variables and command-line flags, in increasing precedence.
//
// Example (YAML):
//
//	job: sales_etl
//	source:
//	  kind: file
//	  file: { path: sales_data.json }
//	storage:
//	  kind: mysql
//	  db: { host: localhost, database: sales_db, user: root, password: secret }
//	runtime: { batch_size: 1000 }
//	analytics: { enabled: true, top_n: 5 }
package config

import (
	"time"

	"salesetl/internal/storage"
)

// Pipeline is the top-level configuration of one ETL run.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `mapstructure:"job" json:"job"`

	Source    Source          `mapstructure:"source" json:"source"`
	Storage   Storage         `mapstructure:"storage" json:"storage"`
	Runtime   RuntimeConfig   `mapstructure:"runtime" json:"runtime"`
	Analytics AnalyticsConfig `mapstructure:"analytics" json:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" json:"metrics"`
}

// Source identifies the input: a local "file" or an "http" URL.
type Source struct {
	Kind string     `mapstructure:"kind" json:"kind"`
	File SourceFile `mapstructure:"file" json:"file"`
	HTTP SourceHTTP `mapstructure:"http" json:"http"`

	// MaxRecords bounds extraction; 0 reads every record.
	MaxRecords int `mapstructure:"max_records" json:"max_records"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the JSON input file.
	Path string `mapstructure:"path" json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL        string        `mapstructure:"url" json:"url"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries"`
}

// Storage selects the backend and load behavior.
type Storage struct {
	// Kind selects the backend: mysql, postgres, mssql or sqlite.
	Kind string   `mapstructure:"kind" json:"kind"`
	DB   DBConfig `mapstructure:"db" json:"db"`

	// ClearBeforeLoad empties the three tables before writing, so re-runs
	// start from the same state.
	ClearBeforeLoad bool `mapstructure:"clear_before_load" json:"clear_before_load"`

	// Transactional wraps the clear and the three table writes in one
	// transaction.
	Transactional bool `mapstructure:"transactional" json:"transactional"`
}

// DBConfig carries connection settings. DSN, when set, overrides the discrete
// fields. For sqlite, Database is the file path.
type DBConfig struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	Database string `mapstructure:"database" json:"database"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"-"`
	DSN      string `mapstructure:"dsn" json:"-"`
}

// Params converts s to backend connection parameters.
func (s Storage) Params() storage.Params {
	return storage.Params{
		Kind:     s.Kind,
		Host:     s.DB.Host,
		Port:     s.DB.Port,
		Database: s.DB.Database,
		User:     s.DB.User,
		Password: s.DB.Password,
		DSN:      s.DB.DSN,
	}
}

// RuntimeConfig controls batching.
type RuntimeConfig struct {
	BatchSize int `mapstructure:"batch_size" json:"batch_size"`
}

// AnalyticsConfig controls the post-load aggregate queries.
type AnalyticsConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	TopN        int    `mapstructure:"top_n" json:"top_n"`
	Parallelism int    `mapstructure:"parallelism" json:"parallelism"`
	XLSXPath    string `mapstructure:"xlsx_path" json:"xlsx_path"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	File       string `mapstructure:"file" json:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	Console    bool   `mapstructure:"console" json:"console"`
}

// MetricsConfig selects a metrics backend: none, prompush or datadog.
type MetricsConfig struct {
	Backend        string `mapstructure:"backend" json:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr" json:"datadog_addr"`
}
