package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Marker is the key that flags a decoded mapping as a dynamic node. Its value
// is either true (kind inferred from the keys present) or a kind name:
// "allOf", "anyOf", "oneOf", "not", "list", "tuple", "object" or "fragment".
//
//	horoscope:
//	  $dynamic: true
//	  type: string
//
// Mappings without the marker are plain objects.
const Marker = "$dynamic"

var kindsByMarker = map[string]Kind{
	"allOf":    KindAllOf,
	"anyOf":    KindAnyOf,
	"oneOf":    KindOneOf,
	"not":      KindNot,
	"list":     KindList,
	"tuple":    KindTuple,
	"object":   KindObjectSchema,
	"fragment": KindFragment,
}

// DecodeJSON decodes a JSON document into a Value.
func DecodeJSON(b []byte) (Value, error) {
	doc, err := decodeJSON(b)
	if err != nil {
		return nil, fmt.Errorf("schema: decode json: %w", err)
	}
	return Decode(doc)
}

// DecodeYAML decodes a YAML document into a Value.
func DecodeYAML(b []byte) (Value, error) {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	return Decode(doc)
}

// Decode converts a generic document tree (as produced by encoding/json or
// yaml.v3) into a Value, turning marked mappings into nodes.
func Decode(doc any) (Value, error) {
	return decodeAt(doc, "")
}

func decodeAt(doc any, path string) (Value, error) {
	switch x := doc.(type) {
	case map[string]any:
		if _, marked := x[Marker]; marked {
			return decodeNode(x, path)
		}
		out := make(Object, len(x))
		for k, item := range x {
			v, err := decodeAt(item, ptrJoin(path, fmt.Sprintf("[%q]", k)))
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, item := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("schema: %s: non-string key %v", pathOrRoot(path), k)
			}
			m[ks] = item
		}
		return decodeAt(m, path)
	case []any:
		out := make(Array, len(x))
		for i, item := range x {
			v, err := decodeAt(item, ptrJoin(path, fmt.Sprintf("[%d]", i)))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	if l, ok := literalOf(doc); ok {
		return l, nil
	}
	return nil, fmt.Errorf("schema: %s: unsupported document value %T", pathOrRoot(path), doc)
}

// classify infers a node kind from the keys present, in compile precedence
// order, so a mapping carrying both allOf and properties is an allOf node.
func classify(m map[string]any) Kind {
	switch {
	case has(m, "allOf"):
		return KindAllOf
	case has(m, "anyOf"):
		return KindAnyOf
	case has(m, "oneOf"):
		return KindOneOf
	case has(m, "not"):
		return KindNot
	}
	if items, ok := m["items"]; ok {
		if _, isList := asSlice(items); isList {
			return KindTuple
		}
		return KindList
	}
	if has(m, "properties") || has(m, "patternProperties") || has(m, "additionalProperties") || m["type"] == "object" {
		return KindObjectSchema
	}
	return KindFragment
}

func has(m map[string]any, k string) bool {
	_, ok := m[k]
	return ok
}

func decodeNode(m map[string]any, path string) (Value, error) {
	var kind Kind
	switch marker := m[Marker].(type) {
	case bool:
		if !marker {
			return nil, shapeErr(path, KindFragment, "%s must be true or a kind name", Marker)
		}
		kind = classify(m)
	case string:
		k, ok := kindsByMarker[marker]
		if !ok {
			return nil, shapeErr(path, KindFragment, "unknown %s kind %q", Marker, marker)
		}
		kind = k
	default:
		return nil, shapeErr(path, KindFragment, "%s must be true or a kind name", Marker)
	}

	n := &Node{kind: kind}
	consumed := map[string]bool{Marker: true}

	switch kind {
	case KindAllOf, KindAnyOf, KindOneOf:
		op := kind.String()
		of, err := decodeList(m, op, path, kind)
		if err != nil {
			return nil, err
		}
		n.Of = of
		consumed[op] = true

	case KindNot:
		raw, ok := m["not"]
		if !ok {
			return nil, shapeErr(path, kind, "missing \"not\"")
		}
		v, err := decodeAt(raw, ptrJoin(path, "not"))
		if err != nil {
			return nil, err
		}
		n.Item = v
		consumed["not"] = true

	case KindList:
		raw, ok := m["items"]
		if !ok {
			return nil, shapeErr(path, kind, "missing \"items\"")
		}
		if _, isMap := asMap(raw); !isMap {
			return nil, shapeErr(path, kind, "\"items\" must be a mapping")
		}
		v, err := decodeAt(raw, ptrJoin(path, "items"))
		if err != nil {
			return nil, err
		}
		n.Item = v
		consumed["items"] = true

	case KindTuple:
		of, err := decodeList(m, "items", path, kind)
		if err != nil {
			return nil, err
		}
		n.Of = of
		consumed["items"] = true

	case KindObjectSchema:
		for _, key := range []string{"properties", "patternProperties"} {
			raw, ok := m[key]
			if !ok {
				continue
			}
			pm, ok := asMap(raw)
			if !ok {
				return nil, shapeErr(path, kind, "%q must be a mapping", key)
			}
			props := make(map[string]Value, len(pm))
			for k, item := range pm {
				v, err := decodeAt(item, ptrJoin(path, fmt.Sprintf("%s[%q]", key, k)))
				if err != nil {
					return nil, err
				}
				props[k] = v
			}
			if key == "properties" {
				n.Properties = props
			} else {
				n.PatternProperties = props
			}
			consumed[key] = true
		}
		if raw, ok := m["additionalProperties"]; ok {
			v, err := decodeAt(raw, ptrJoin(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			n.AdditionalProperties = v
			consumed["additionalProperties"] = true
		}
	}

	for k, v := range m {
		if consumed[k] {
			continue
		}
		if n.Keywords == nil {
			n.Keywords = map[string]any{}
		}
		n.Keywords[k] = stripMarker(v)
	}
	return n, nil
}

func decodeList(m map[string]any, key, path string, kind Kind) ([]Value, error) {
	raw, ok := m[key]
	if !ok {
		return nil, shapeErr(path, kind, "missing %q", key)
	}
	arr, ok := asSlice(raw)
	if !ok {
		return nil, shapeErr(path, kind, "%q must be a list", key)
	}
	out := make([]Value, len(arr))
	for i, item := range arr {
		v, err := decodeAt(item, ptrJoin(path, fmt.Sprintf("%s[%d]", key, i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
