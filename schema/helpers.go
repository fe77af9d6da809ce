package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

func pathOrRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

func ptrJoin(prefix, next string) string {
	if prefix == "" {
		return next
	}
	if next == "" {
		return prefix
	}
	if strings.HasPrefix(next, "[") || strings.HasPrefix(next, ".") {
		return prefix + next
	}
	return prefix + "." + next
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// decodeJSON decodes exactly one JSON document, keeping numbers as json.Number.
func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, errors.New("invalid JSON: trailing data")
	}
	return v, nil
}

// stripMarker deep-copies a keyword value, dropping every Marker key.
func stripMarker(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			if k == Marker {
				continue
			}
			out[k] = stripMarker(item)
		}
		return out
	case JSONSchema:
		return JSONSchema(stripMarker(map[string]any(x)).(map[string]any))
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = stripMarker(item)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	}
	return v
}

func cloneKeywords(kw map[string]any) JSONSchema {
	out := make(JSONSchema, len(kw)+2)
	for k, v := range kw {
		if k == Marker {
			continue
		}
		out[k] = stripMarker(v)
	}
	return out
}
