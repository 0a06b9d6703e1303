package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "runtime.batch_size"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains a SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of p. It does not mutate the
// pipeline; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateAnalytics(p.Analytics)...)
	issues = append(issues, validateLogging(p.Logging)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.file.path", "file source requires a non-empty path"})
		}
	case "http":
		u, err := url.Parse(strings.TrimSpace(s.HTTP.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, Issue{SeverityError, "source.http.url", "http source requires an absolute http(s) url"})
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{SeverityError, "source.http.max_retries", "max_retries must not be negative"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "source.kind",
			fmt.Sprintf("unsupported source kind %q; want file or http", s.Kind)})
	}
	if s.MaxRecords < 0 {
		issues = append(issues, Issue{SeverityError, "source.max_records", "max_records must not be negative"})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		return append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	}
	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[kind]; !ok {
		issues = append(issues, Issue{SeverityWarning, "storage.kind",
			fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind)})
	}

	db := s.DB
	if db.Port < 0 || db.Port > 65535 {
		issues = append(issues, Issue{SeverityError, "storage.db.port", fmt.Sprintf("port %d is out of range", db.Port)})
	}
	if strings.TrimSpace(db.DSN) != "" {
		return issues
	}
	if strings.TrimSpace(db.Database) == "" {
		issues = append(issues, Issue{SeverityError, "storage.db.database", "storage.db.database must not be empty when no dsn is given"})
	}
	if kind == "sqlite" {
		return issues
	}
	if strings.TrimSpace(db.Host) == "" {
		issues = append(issues, Issue{SeverityError, "storage.db.host", "storage.db.host must not be empty when no dsn is given"})
	}
	if strings.TrimSpace(db.User) == "" {
		issues = append(issues, Issue{SeverityWarning, "storage.db.user", "no user configured; the driver default applies"})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.BatchSize <= 0 {
		return []Issue{{SeverityError, "runtime.batch_size", fmt.Sprintf("batch_size=%d; batch size must be a positive integer", r.BatchSize)}}
	}
	return nil
}

func validateAnalytics(a AnalyticsConfig) []Issue {
	var issues []Issue
	if a.TopN <= 0 {
		sev := SeverityWarning
		if a.Enabled {
			sev = SeverityError
		}
		issues = append(issues, Issue{sev, "analytics.top_n", "top_n must be positive"})
	}
	if a.Parallelism < 0 {
		issues = append(issues, Issue{SeverityError, "analytics.parallelism", "parallelism must not be negative"})
	}
	if a.XLSXPath != "" && !strings.HasSuffix(strings.ToLower(a.XLSXPath), ".xlsx") {
		issues = append(issues, Issue{SeverityWarning, "analytics.xlsx_path", "xlsx_path does not end in .xlsx"})
	}
	return issues
}

func validateLogging(l LoggingConfig) []Issue {
	var issues []Issue
	if l.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(l.Level)); err != nil {
			issues = append(issues, Issue{SeverityError, "logging.level", fmt.Sprintf("unknown level %q", l.Level)})
		}
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 {
		issues = append(issues, Issue{SeverityError, "logging", "max_size_mb and max_backups must not be negative"})
	}
	return issues
}

func validateMetrics(m MetricsConfig) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "prompush":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{SeverityError, "metrics.pushgateway_url", "prompush backend requires pushgateway_url"}}
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			return []Issue{{SeverityError, "metrics.datadog_addr", "datadog backend requires datadog_addr"}}
		}
	default:
		return []Issue{{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q; want none, prompush or datadog", m.Backend)}}
	}
	return nil
}
