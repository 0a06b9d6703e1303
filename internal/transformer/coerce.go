// Package transformer holds the row-level stages that run between extraction
// and the quality checks: product flattening and field derivation.
package transformer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// text converts a decoded scalar to an NFC-normalized string. nil stays nil.
// Objects and arrays report ok=false.
func text(v any) (s *string, ok bool) {
	var out string
	switch x := v.(type) {
	case nil:
		return nil, true
	case string:
		out = norm.NFC.String(x)
	case json.Number:
		out = x.String()
	case bool:
		out = strconv.FormatBool(x)
	case float64:
		out = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		out = strconv.Itoa(x)
	case int64:
		out = strconv.FormatInt(x, 10)
	default:
		return nil, false
	}
	return &out, true
}

// integer converts a decoded scalar to int64. Whole floats ("3.0") are
// accepted; fractions and non-numeric text report ok=false.
func integer(v any) (n *int64, ok bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return &i, true
		}
		f, err := x.Float64()
		if err != nil {
			return nil, false
		}
		return wholeFloat(f)
	case float64:
		return wholeFloat(x)
	case int:
		i := int64(x)
		return &i, true
	case int64:
		return &x, true
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return wholeFloat(f)
	default:
		return nil, false
	}
}

func wholeFloat(f float64) (*int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	// int64(f) is undefined outside the int64 range.
	if f < -(1<<63) || f >= 1<<63 {
		return nil, false
	}
	i := int64(f)
	return &i, true
}

// numeric coerces a price-like value to float64. Anything that does not read
// as a number, including NaN, becomes nil.
func numeric(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return nil
		}
		f = p
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func describe(v any) string { return fmt.Sprintf("%T", v) }
