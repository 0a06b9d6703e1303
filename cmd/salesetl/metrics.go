package main

import (
	"salesetl/internal/config"
	"salesetl/internal/diag"
	"salesetl/internal/metrics"
	"salesetl/internal/metrics/datadog"
	"salesetl/internal/metrics/prompush"
)

// setupMetrics installs the configured metrics backend. The returned func
// flushes it. A backend that cannot be created leaves metrics disabled.
func setupMetrics(p config.Pipeline, sink diag.Sink) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "", "none":
		sink.Record(diag.LevelDebug, "metrics disabled", nil)
		return func() {}
	case "prompush":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  "salesetl.",
			GlobalTags: []string{"job:" + p.Job},
		})
	default:
		sink.Record(diag.LevelWarn, "unknown metrics backend, metrics disabled", diag.Fields{"backend": p.Metrics.Backend})
		return func() {}
	}
	if err != nil {
		sink.Record(diag.LevelWarn, "metrics backend init failed, metrics disabled", diag.Fields{
			"backend": p.Metrics.Backend,
			"error":   err.Error(),
		})
		return func() {}
	}
	metrics.SetBackend(b)
	sink.Record(diag.LevelInfo, "metrics enabled", diag.Fields{"backend": p.Metrics.Backend})
	return func() {
		if err := metrics.Flush(); err != nil {
			sink.Record(diag.LevelWarn, "metrics flush failed", diag.Fields{"error": err.Error()})
		}
	}
}
