// Package diag carries pipeline diagnostics. Stages receive a Sink and never
// reach for a global logger.
package diag

import "sync"

// Level is the severity of an event.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Fields are structured key/value pairs attached to an event.
type Fields map[string]any

// Sink records diagnostic events. Implementations must be safe for concurrent
// use; analytics queries report from several goroutines.
type Sink interface {
	Record(level Level, event string, fields Fields)
}

type discard struct{}

func (discard) Record(Level, string, Fields) {}

// Discard drops every event.
var Discard Sink = discard{}

// Event is one recorded diagnostic.
type Event struct {
	Level  Level
	Name   string
	Fields Fields
}

// Recorder is an in-memory Sink. The zero value is ready to use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Record(level Level, event string, fields Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Level: level, Name: event, Fields: fields})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Named returns the recorded events whose name equals event.
func (r *Recorder) Named(event string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Name == event {
			out = append(out, e)
		}
	}
	return out
}

// With returns a Sink that adds fields to every event passed to s.
// Event fields win over the bound ones on key collisions.
func With(s Sink, fields Fields) Sink {
	if len(fields) == 0 {
		return s
	}
	return bound{next: s, fields: fields}
}

type bound struct {
	next   Sink
	fields Fields
}

func (b bound) Record(level Level, event string, fields Fields) {
	merged := make(Fields, len(b.fields)+len(fields))
	for k, v := range b.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	b.next.Record(level, event, merged)
}
