// Package datestd turns free-form date strings into YYYY-MM-DD.
//
// Day/month ambiguity resolves month first ("05/01/2023" is May 1st). That
// convention is relied on downstream and must not be changed to guess.
package datestd

import (
	"regexp"
	"strings"
	"time"

	"salesetl/internal/diag"
)

// Layout is the canonical output format.
const Layout = "2006-01-02"

var (
	splitYear  = regexp.MustCompile(`(\d{2})\s+(\d{2})([-/\s])`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Standardizer parses dates tolerantly. The zero value reports nothing and
// fills missing components from the current date.
type Standardizer struct {
	Sink diag.Sink
	// Reference supplies components absent from the input. Zero means now.
	Reference time.Time
}

// Standardize returns the canonical form of raw, or nil when raw is nil or
// cannot be parsed even after Repair. It never panics on bad input.
func (s Standardizer) Standardize(raw *string) *string {
	if raw == nil {
		return nil
	}
	in := strings.TrimSpace(*raw)
	ref := s.Reference
	if ref.IsZero() {
		ref = time.Now()
	}

	if t, ok := Parse(in, ref); ok {
		out := t.Format(Layout)
		return &out
	}
	fixed := Repair(in)
	if t, ok := Parse(fixed, ref); ok {
		out := t.Format(Layout)
		return &out
	}

	if s.Sink != nil {
		s.Sink.Record(diag.LevelWarn, "could not parse date", diag.Fields{"date": *raw, "repaired": fixed})
	}
	return nil
}

// Repair joins a four-digit year written as two two-digit groups ("20 23-07-22")
// and then turns every remaining whitespace run into a hyphen.
func Repair(s string) string {
	s = splitYear.ReplaceAllString(s, "${1}${2}${3}")
	return whitespace.ReplaceAllString(s, "-")
}
