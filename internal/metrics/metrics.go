// Package metrics records operational metrics from the sales pipeline
// through a pluggable Backend.
//
// The backend is process-global and defaults to a no-op, so stages can
// record unconditionally. Concrete systems live in subpackages (prompush,
// datadog) and are installed once by the CLI with SetBackend.
package metrics

import "time"

// Metric names shared by every backend.
const (
	StepTotal     = "etl_step_total"
	StepDuration  = "etl_step_duration_seconds"
	RowsTotal     = "etl_rows_total"
	BatchesTotal  = "etl_batches_total"
	QualityIssues = "etl_quality_issues_total"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a pipeline stage and observes its
// duration, labelled by outcome.
func RecordStep(job, step string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds delta to the row counter for kind ("extracted", "loaded").
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordBatches adds delta batch writes against table.
func RecordBatches(job, table string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job, "table": table})
}

// RecordDefects adds n data-quality defects of category.
func RecordDefects(job, category string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter(QualityIssues, float64(n), Labels{"job": job, "category": category})
}
