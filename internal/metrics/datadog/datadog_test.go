package datadog

import (
	"strings"
	"testing"

	"salesetl/internal/metrics"
)

type sent struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	sent    []sent
	flushed bool
	closed  bool
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.sent = append(f.sent, sent{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Flush() error { f.flushed = true; return nil }
func (f *fakeClient) Close() error { f.closed = true; return nil }

func TestBackendForwardsWithTags(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}
	b.IncCounter(metrics.QualityIssues, 2, metrics.Labels{"job": "sales_etl", "category": "date_issues"})
	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "load"})

	if len(fc.sent) != 2 {
		t.Fatalf("sent = %#v", fc.sent)
	}
	c := fc.sent[0]
	if c.kind != "count" || c.name != metrics.QualityIssues || c.value != 2 {
		t.Fatalf("count = %#v", c)
	}
	if got := strings.Join(c.tags, ","); got != "category:date_issues,job:sales_etl" {
		t.Fatalf("tags = %q", got)
	}
	if h := fc.sent[1]; h.kind != "histogram" || h.value != 0.25 {
		t.Fatalf("histogram = %#v", h)
	}

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !fc.flushed || !fc.closed {
		t.Fatalf("Flush did not flush and close the client")
	}
}

func TestNewBackendRequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend without Addr succeeded")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
