package schema

import (
	"fmt"
	"sort"
)

// Compile lowers v into a JSON Schema.
//
// Dynamic nodes are dispatched on their kind in a fixed order (allOf, anyOf,
// oneOf, not, list, tuple, objectSchema, fragment). Plain values that hold no
// dynamic node anywhere below them compile to {"const": <value>}. Plain arrays
// and objects that do hold dynamic nodes compile structurally: arrays to a
// positional tuple, objects to an object schema whose properties are required
// unless wrapped in Opt.
func Compile(v Value) (JSONSchema, error) {
	return compileAt(v, "")
}

// MustCompile is like Compile but panics on error.
func MustCompile(v Value) JSONSchema {
	s, err := Compile(v)
	if err != nil {
		panic(err)
	}
	return s
}

func compileAt(v Value, path string) (JSONSchema, error) {
	switch x := v.(type) {
	case nil:
		return nil, shapeErr(path, KindLiteral, "missing value")
	case *Node:
		if x == nil {
			return nil, shapeErr(path, KindFragment, "nil node")
		}
		return compileNode(x, path)
	case Optional:
		return compileAt(x.Value, path)
	case Literal, Array, Object:
		if !containsDynamic(x) {
			return JSONSchema{"const": plainValue(x)}, nil
		}
		return compileStructural(x, path)
	default:
		return nil, fmt.Errorf("schema: unsupported value %T at %s", v, pathOrRoot(path))
	}
}

func compileNode(n *Node, path string) (JSONSchema, error) {
	out := cloneKeywords(n.Keywords)

	switch n.kind {
	case KindAllOf, KindAnyOf, KindOneOf:
		op := n.kind.String()
		if len(n.Of) == 0 {
			return nil, shapeErr(path, n.kind, "%s requires at least one schema", op)
		}
		list, err := compileEach(n.Of, path, op)
		if err != nil {
			return nil, err
		}
		out[op] = list

	case KindNot:
		if n.Item == nil {
			return nil, shapeErr(path, n.kind, "not requires a schema to negate")
		}
		s, err := compileAt(n.Item, ptrJoin(path, "not"))
		if err != nil {
			return nil, err
		}
		out["not"] = s

	case KindList:
		if n.Item == nil {
			return nil, shapeErr(path, n.kind, "list requires an item schema")
		}
		s, err := compileAt(n.Item, ptrJoin(path, "items"))
		if err != nil {
			return nil, err
		}
		out["type"] = "array"
		out["items"] = s

	case KindTuple:
		if len(n.Of) == 0 {
			return nil, shapeErr(path, n.kind, "tuple requires at least one positional schema")
		}
		items, err := compileEach(n.Of, path, "items")
		if err != nil {
			return nil, err
		}
		out["oneOf"] = []any{JSONSchema{"type": "array", "items": items}}

	case KindObjectSchema:
		_, typed := out["type"]
		if n.Properties == nil && n.PatternProperties == nil && n.AdditionalProperties == nil && !typed {
			return nil, shapeErr(path, n.kind, "object requires properties, patternProperties, additionalProperties or type")
		}
		if n.Properties != nil {
			props, err := compileProps(n.Properties, ptrJoin(path, "properties"))
			if err != nil {
				return nil, err
			}
			out["properties"] = props
		}
		if n.PatternProperties != nil {
			props, err := compileProps(n.PatternProperties, ptrJoin(path, "patternProperties"))
			if err != nil {
				return nil, err
			}
			out["patternProperties"] = props
		}
		if n.AdditionalProperties != nil {
			ap, err := compileAdditional(n.AdditionalProperties, ptrJoin(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			out["additionalProperties"] = ap
		}

	case KindFragment:
		// keywords only

	default:
		return nil, shapeErr(path, n.kind, "not a dynamic kind")
	}
	return out, nil
}

func compileEach(vs []Value, path, key string) ([]any, error) {
	out := make([]any, len(vs))
	for i, v := range vs {
		s, err := compileAt(v, ptrJoin(path, fmt.Sprintf("%s[%d]", key, i)))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func compileProps(props map[string]Value, path string) (map[string]any, error) {
	out := make(map[string]any, len(props))
	for k, v := range props {
		s, err := compileAt(v, ptrJoin(path, fmt.Sprintf("[%q]", k)))
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

// compileAdditional keeps a boolean literal as a boolean schema.
func compileAdditional(v Value, path string) (any, error) {
	if l, ok := v.(Literal); ok {
		if b, ok := l.v.(bool); ok {
			return b, nil
		}
	}
	return compileAt(v, path)
}

func compileStructural(v Value, path string) (JSONSchema, error) {
	switch x := v.(type) {
	case Array:
		items, err := compileEach(x, path, "items")
		if err != nil {
			return nil, err
		}
		return JSONSchema{"type": "array", "items": items}, nil
	case Object:
		props, err := compileProps(x, ptrJoin(path, "properties"))
		if err != nil {
			return nil, err
		}
		out := JSONSchema{"type": "object", "properties": props}
		var required []string
		for k, item := range x {
			if _, optional := item.(Optional); !optional {
				required = append(required, k)
			}
		}
		if len(required) > 0 {
			sort.Strings(required)
			out["required"] = required
		}
		return out, nil
	}
	return nil, fmt.Errorf("schema: %s cannot be compiled structurally", v.Kind())
}

// plainValue converts a marker-free value into native JSON.
func plainValue(v Value) any {
	switch x := v.(type) {
	case Literal:
		return x.v
	case Array:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = plainValue(item)
		}
		return out
	case Object:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = plainValue(item)
		}
		return out
	}
	return nil
}
