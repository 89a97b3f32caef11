package nfz

import "fmt"

// Flatten reduces a raw tool response to plain text/maps/lists so the
// payload can be embedded in a canonical serialization. Content-block
// structures ({"type":"text","text":...}) collapse to their text, a
// tool-result wrapper ({"content":...,"isError":...}) collapses to its
// content, and anything not otherwise serializable falls back to its string
// form. Domain maps recurse per key; a "text" key without the content-block
// type marker is ordinary data and survives with its siblings.
func Flatten(v any) any {
	switch value := v.(type) {
	case nil, bool, string, float64, int, int64:
		return value
	case map[string]any:
		if content, ok := value["content"]; ok && isResultWrapper(value) {
			return Flatten(content)
		}
		if typ, ok := value["type"].(string); ok && typ == "text" {
			if text, ok := value["text"].(string); ok {
				return text
			}
		}
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = Flatten(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = Flatten(item)
		}
		return out
	default:
		return fmt.Sprintf("%v", value)
	}
}

// isResultWrapper reports whether m looks like a tool-result envelope rather
// than domain data that happens to contain a "content" key.
func isResultWrapper(m map[string]any) bool {
	for k := range m {
		if k != "content" && k != "isError" && k != "_meta" {
			return false
		}
	}
	return true
}

// ErrorText inspects a raw (pre-flatten) tool payload for the tool-level
// error flag ({"isError": true, ...}). When set, the flattened content is
// returned as the error message.
func ErrorText(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	if isErr, _ := m["isError"].(bool); !isErr {
		return "", false
	}
	flat := Flatten(m["content"])
	if text, ok := flat.(string); ok {
		return text, true
	}
	return fmt.Sprintf("%v", flat), true
}
