package schema

import "maps"

// Option adjusts the keywords or structure of a node built by the DSL.
type Option func(*Node)

func keyword(k string, v any) Option {
	return func(n *Node) {
		if n.Keywords == nil {
			n.Keywords = map[string]any{}
		}
		n.Keywords[k] = v
	}
}

// Keyword sets an arbitrary JSON Schema keyword.
func Keyword(k string, v any) Option { return keyword(k, v) }

// Description sets the description annotation.
func Description(s string) Option { return keyword("description", s) }

// Format sets the string format (email, uri, date-time, ...).
func Format(s string) Option { return keyword("format", s) }

// Pattern sets the string pattern.
func Pattern(s string) Option { return keyword("pattern", s) }

func Minimum(f float64) Option { return keyword("minimum", f) }
func Maximum(f float64) Option { return keyword("maximum", f) }
func MinLength(n int) Option   { return keyword("minLength", n) }
func MaxLength(n int) Option   { return keyword("maxLength", n) }
func MinItems(n int) Option    { return keyword("minItems", n) }
func MaxItems(n int) Option    { return keyword("maxItems", n) }

// Enum restricts the value to the given literals.
func Enum(values ...any) Option {
	return keyword("enum", append([]any(nil), values...))
}

// Required lists required property names of an object schema.
func Required(keys ...string) Option {
	return keyword("required", append([]string(nil), keys...))
}

// Closed forbids properties other than the declared ones.
func Closed() Option { return keyword("additionalProperties", false) }

// Additional sets the schema for undeclared properties.
func Additional(v Value) Option {
	return func(n *Node) { n.AdditionalProperties = v }
}

// PatternProps sets schemas for properties whose names match a regex.
func PatternProps(props map[string]Value) Option {
	return func(n *Node) { n.PatternProperties = maps.Clone(props) }
}

func newNode(kind Kind, kw map[string]any, opts []Option) *Node {
	n := &Node{kind: kind, Keywords: kw}
	for _, o := range opts {
		if o != nil {
			o(n)
		}
	}
	return n
}

func typed(t string, opts []Option) *Node {
	return newNode(KindFragment, map[string]any{"type": t}, opts)
}

// String matches any JSON string.
func String(opts ...Option) *Node { return typed("string", opts) }

// Integer matches any JSON integer.
func Integer(opts ...Option) *Node { return typed("integer", opts) }

// Number matches any JSON number.
func Number(opts ...Option) *Node { return typed("number", opts) }

// Boolean matches true or false.
func Boolean(opts ...Option) *Node { return typed("boolean", opts) }

// Null matches only null.
func Null(opts ...Option) *Node { return typed("null", opts) }

// Fragment wraps raw JSON Schema keywords; they are emitted as given.
func Fragment(kw map[string]any, opts ...Option) *Node {
	return newNode(KindFragment, maps.Clone(kw), opts)
}

func AllOf(vs ...Value) *Node { return &Node{kind: KindAllOf, Of: vs} }
func AnyOf(vs ...Value) *Node { return &Node{kind: KindAnyOf, Of: vs} }
func OneOf(vs ...Value) *Node { return &Node{kind: KindOneOf, Of: vs} }

// Not matches anything v does not match.
func Not(v Value) *Node { return &Node{kind: KindNot, Item: v} }

// List matches arrays whose every element matches item.
func List(item Value, opts ...Option) *Node {
	n := newNode(KindList, map[string]any{"type": "array"}, opts)
	n.Item = item
	return n
}

// Tuple matches fixed-arity arrays, element i matching items[i].
func Tuple(items ...Value) *Node { return &Node{kind: KindTuple, Of: items} }

// ObjectOf matches objects whose listed properties match their schemas.
// Properties are not required unless Required is given.
func ObjectOf(props map[string]Value, opts ...Option) *Node {
	n := newNode(KindObjectSchema, map[string]any{"type": "object"}, opts)
	if props != nil {
		n.Properties = maps.Clone(props)
	}
	return n
}
