package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONSchema is a compiled JSON Schema tree.
// It is intentionally untyped; use canonicaljson.Marshal for stable bytes.
type JSONSchema map[string]any

// Kind enumerates the variants of Value.
type Kind int

const (
	// KindLiteral is a JSON scalar: string, number, boolean or null.
	KindLiteral Kind = iota
	// KindArray is a plain positional array of values.
	KindArray
	// KindObject is a plain mapping of keys to values.
	KindObject

	// Dynamic kinds, in compile precedence order.
	KindAllOf
	KindAnyOf
	KindOneOf
	KindNot
	KindList
	KindTuple
	KindObjectSchema
	KindFragment

	// KindOptional marks an object property as not required.
	KindOptional
)

var kindNames = map[Kind]string{
	KindLiteral:      "literal",
	KindArray:        "array",
	KindObject:       "object",
	KindAllOf:        "allOf",
	KindAnyOf:        "anyOf",
	KindOneOf:        "oneOf",
	KindNot:          "not",
	KindList:         "list",
	KindTuple:        "tuple",
	KindObjectSchema: "objectSchema",
	KindFragment:     "fragment",
	KindOptional:     "optional",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsDynamic reports whether k is a schema node kind rather than a plain value.
func (k Kind) IsDynamic() bool {
	return k >= KindAllOf && k <= KindFragment
}

// Value is the author-facing shape of a response. The set of implementations
// is closed: Literal, Array, Object, *Node and Optional.
type Value interface {
	Kind() Kind
	isValue()
}

// Literal is a JSON scalar. Construct it with Lit or From.
type Literal struct {
	v any
}

func (Literal) Kind() Kind { return KindLiteral }
func (Literal) isValue()   {}

// Interface returns the wrapped scalar.
func (l Literal) Interface() any { return l.v }

// Lit wraps a JSON scalar. It panics on anything that is not nil, a bool, a
// string, a json.Number or a Go integer/float; use From for fallible conversion.
func Lit(v any) Literal {
	l, ok := literalOf(v)
	if !ok {
		panic(fmt.Sprintf("schema: %T is not a JSON scalar", v))
	}
	return l
}

func literalOf(v any) (Literal, bool) {
	switch v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return Literal{v: v}, true
	}
	return Literal{}, false
}

// Array is a plain array; each position is itself a Value.
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (Array) isValue()   {}

// Object is a plain object; key order carries no meaning.
type Object map[string]Value

func (Object) Kind() Kind { return KindObject }
func (Object) isValue()   {}

// Node is a dynamic schema fragment. Which fields are read depends on the kind:
//
//	allOf, anyOf, oneOf  Of (at least one)
//	tuple                Of (at least one, positional)
//	not                  Item
//	list                 Item (the element schema)
//	objectSchema         Properties, PatternProperties, AdditionalProperties
//	fragment             Keywords only
//
// Keywords are copied into the compiled schema verbatim for every kind.
type Node struct {
	kind Kind

	Keywords             map[string]any
	Of                   []Value
	Item                 Value
	Properties           map[string]Value
	PatternProperties    map[string]Value
	AdditionalProperties Value
}

// NewNode returns an empty node of the given dynamic kind. It panics when kind
// is not dynamic. Most callers should use the constructors in dsl.go.
func NewNode(kind Kind) *Node {
	if !kind.IsDynamic() {
		panic(fmt.Sprintf("schema: %s is not a dynamic kind", kind))
	}
	return &Node{kind: kind}
}

func (n *Node) Kind() Kind { return n.kind }
func (*Node) isValue()     {}

// Optional wraps an object property value that may be absent.
type Optional struct {
	Value Value
}

func (Optional) Kind() Kind { return KindOptional }
func (Optional) isValue()   {}

// Opt marks v as an optional property of the enclosing object.
func Opt(v Value) Optional { return Optional{Value: v} }

// From converts a native Go JSON tree into a Value. Values embedded anywhere
// in the tree are kept as they are, so plain Go maps can mix literals with
// dynamic nodes.
func From(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case map[string]any:
		out := make(Object, len(x))
		for k, item := range x {
			cv, err := From(item)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			out[k] = cv
		}
		return out, nil
	case []any:
		out := make(Array, len(x))
		for i, item := range x {
			cv, err := From(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	}
	if l, ok := literalOf(v); ok {
		return l, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Array, rv.Len())
		for i := range out {
			cv, err := From(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("schema: map key type %s is not string", rv.Type().Key())
		}
		out := make(Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			cv, err := From(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			out[k] = cv
		}
		return out, nil
	}
	return nil, fmt.Errorf("schema: unsupported value type %T", v)
}

// containsDynamic reports whether any node below v is a schema node.
func containsDynamic(v Value) bool {
	switch x := v.(type) {
	case *Node, Optional:
		return true
	case Array:
		for _, item := range x {
			if containsDynamic(item) {
				return true
			}
		}
	case Object:
		for _, item := range x {
			if containsDynamic(item) {
				return true
			}
		}
	}
	return false
}
