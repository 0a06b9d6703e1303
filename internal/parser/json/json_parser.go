// Package json decodes the sales input: a single top-level JSON array of
// objects, each becoming one records.RawRecord.
//
// Numbers are kept as json.Number so the normalizer decides how to map them.
// The array is walked element by element with a token decoder, so a bounded
// extraction stops reading once the limit is hit.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"salesetl/internal/records"
)

var (
	// ErrNotArray is returned when the root value is not a JSON array.
	ErrNotArray = errors.New("json parser: root value is not an array")
	// ErrNoRecords is returned when the array holds no objects.
	ErrNoRecords = errors.New("json parser: no records in input")
)

// Options tune DecodeRecords.
type Options struct {
	// MaxRecords stops decoding after this many records. Zero means no limit.
	MaxRecords int
}

// DecodeRecords reads a JSON array of objects from r.
//
// A missing or malformed document, a non-array root, a non-object element or
// an empty array is an error. Content after the closing bracket is ignored
// only when the limit cut decoding short; otherwise it must be whitespace.
func DecodeRecords(r io.Reader, opt Options) ([]records.RawRecord, error) {
	d := json.NewDecoder(r)
	d.UseNumber()

	tok, err := d.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("json parser: decode root: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("json parser: decode root: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, ErrNotArray
	}

	var out []records.RawRecord
	for i := 0; d.More(); i++ {
		if opt.MaxRecords > 0 && len(out) >= opt.MaxRecords {
			return out, nil
		}
		var elem any
		if err := d.Decode(&elem); err != nil {
			return nil, fmt.Errorf("json parser: decode element %d: %w", i, err)
		}
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("json parser: element %d in array is not an object", i)
		}
		out = append(out, records.RawRecord(obj))
	}

	if _, err := d.Token(); err != nil {
		return nil, fmt.Errorf("json parser: decode array end: %w", err)
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("json parser: trailing data after array")
	}
	if len(out) == 0 {
		return nil, ErrNoRecords
	}
	return out, nil
}
