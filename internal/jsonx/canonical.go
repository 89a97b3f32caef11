// Package jsonx produces canonical JSON: a byte-for-byte reproducible
// encoding of a structured value. Two values with equal logical content
// serialize to identical bytes regardless of the order in which their
// fields were assembled.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalCanonical serializes v with all object keys in lexicographic order,
// no insignificant whitespace, and no HTML escaping.
//
// v must be a tree of maps, slices and primitives (the shape produced by the
// packager or by unmarshalling arbitrary JSON). Struct values are rejected:
// their key order follows field declaration order, which is not a property of
// the logical content.
func MarshalCanonical(v any) ([]byte, error) {
	if err := checkShape(v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("canonical encode: %w", err)
	}

	// Encoder appends a newline; canonical bytes must not include it.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// checkShape walks v and rejects values whose serialization order is not
// fully determined by encoding/json (which sorts map keys but not struct
// fields).
func checkShape(v any) error {
	switch value := v.(type) {
	case nil, bool, string,
		float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return nil
	case map[string]any:
		for _, item := range value {
			if err := checkShape(item); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, item := range value {
			if err := checkShape(item); err != nil {
				return err
			}
		}
		return nil
	case []string:
		return nil
	case map[string][]string:
		return nil
	default:
		return fmt.Errorf("canonical serialization does not support %T", v)
	}
}
