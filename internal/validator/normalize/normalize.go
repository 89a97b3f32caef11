// Package normalize coerces raw submission fields into canonical forms.
// All helpers are total: bad input produces an empty/nil canonical value,
// never an error.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String trims string values and stringifies non-string scalars.
// nil becomes the empty string.
func String(v any) string {
	if v == nil {
		return ""
	}
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strings.TrimSpace(strconv.FormatFloat(value, 'f', -1, 64))
	case json.Number:
		return strings.TrimSpace(value.String())
	case bool:
		return strconv.FormatBool(value)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}

// Float parses v as a number and rounds it to 6 decimal places.
// Returns nil when v is absent or not numeric.
func Float(v any) *float64 {
	if v == nil {
		return nil
	}

	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case float32:
		f = float64(value)
	case int:
		f = float64(value)
	case int64:
		f = float64(value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	f = roundTo(f, 6)
	return &f
}

// FloatOr returns the normalized float value of v, or fallback when v does
// not normalize to a number.
func FloatOr(v any, fallback float64) float64 {
	if f := Float(v); f != nil {
		return *f
	}
	return fallback
}

func roundTo(f float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(f*shift) / shift
}

// Round3 rounds to 3 decimal places (used for the NFZ search radius in km).
func Round3(f float64) float64 {
	return roundTo(f, 3)
}
