package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one job listing row: a flat mapping from column name to scalar
// value. A missing key or nil value is a null; records are never mutated once
// loaded into the engine.
type Record map[string]any

// Has reports whether the field is present with a non-nil value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// StringValue returns the field rendered as a string. The second return is
// false when the field is null.
func (r Record) StringValue(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", s), true
	}
}

// FloatValue returns the field parsed as a float. The second return is false
// when the field is null; an error means the value is present but not numeric.
func (r Record) FloatValue(field string) (float64, bool, error) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, true, fmt.Errorf("field %q is not numeric: %w", field, err)
		}
		return parsed, true, nil
	default:
		return 0, true, fmt.Errorf("field %q has non-numeric type %T", field, v)
	}
}

// NonNullCount returns the number of fields with a non-nil value. Used by the
// resolution step to decide which side of a duplicate pair is richer.
func (r Record) NonNullCount() int {
	count := 0
	for _, v := range r {
		if v != nil {
			count++
		}
	}
	return count
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
