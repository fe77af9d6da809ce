package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/unmock/unmock-go/canonicaljson"
)

func canon(t *testing.T, v any) string {
	t.Helper()
	b, err := canonicaljson.Marshal(v)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	return string(b)
}

func assertSchema(t *testing.T, got JSONSchema, want string) {
	t.Helper()
	if g, w := canon(t, got), canon(t, json.RawMessage(want)); g != w {
		t.Fatalf("unexpected schema\nwant: %s\ngot:  %s", w, g)
	}
}

func TestCompile_LiteralsBecomeConst(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{Lit("hello"), `{"const":"hello"}`},
		{Lit(42), `{"const":42}`},
		{Lit(1.5), `{"const":1.5}`},
		{Lit(true), `{"const":true}`},
		{Lit(nil), `{"const":null}`},
		{Array{Lit(1), Lit("x"), Array{}}, `{"const":[1,"x",[]]}`},
	}
	for _, c := range cases {
		got, err := Compile(c.in)
		if err != nil {
			t.Fatalf("compile %v: %v", c.in, err)
		}
		assertSchema(t, got, c.want)
	}
}

func TestCompile_PlainObjectIsConst(t *testing.T) {
	in := Object{"a": Lit("hello"), "b": Array{Lit(1), Lit(2)}}
	got, err := Compile(in)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertSchema(t, got, `{"const":{"a":"hello","b":[1,2]}}`)
}

func TestCompile_PlainObjectThatLooksLikeASchemaIsStillConst(t *testing.T) {
	in := Object{"type": Lit("string"), "allOf": Array{Lit(1)}}
	got, err := Compile(in)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertSchema(t, got, `{"const":{"type":"string","allOf":[1]}}`)
}

func TestCompile_DynamicObject(t *testing.T) {
	got, err := Compile(ObjectOf(map[string]Value{"x": String()}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertSchema(t, got, `{"type":"object","properties":{"x":{"type":"string"}}}`)
}

func TestCompile_ObjectPreservesKeySets(t *testing.T) {
	n := ObjectOf(
		map[string]Value{"a": String(), "b": Lit(3), "c": List(Integer())},
		PatternProps(map[string]Value{"^x-": Boolean()}),
		Additional(Number()),
	)
	got, err := Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertSchema(t, got, `{
		"type":"object",
		"properties":{"a":{"type":"string"},"b":{"const":3},"c":{"type":"array","items":{"type":"integer"}}},
		"patternProperties":{"^x-":{"type":"boolean"}},
		"additionalProperties":{"type":"number"}
	}`)
}

func TestCompile_AdditionalPropertiesBoolean(t *testing.T) {
	got, err := Compile(ObjectOf(map[string]Value{"id": Integer()}, Additional(Lit(false))))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got["additionalProperties"] != false {
		t.Fatalf("expected boolean additionalProperties, got %#v", got["additionalProperties"])
	}

	closed := MustCompile(ObjectOf(nil, Closed()))
	assertSchema(t, closed, `{"type":"object","additionalProperties":false}`)
}

func TestCompile_Combinators(t *testing.T) {
	got, err := Compile(AnyOf(String(), Lit(3), AllOf(Integer(Minimum(1)), Not(Lit(7)))))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertSchema(t, got, `{"anyOf":[
		{"type":"string"},
		{"const":3},
		{"allOf":[{"type":"integer","minimum":1},{"not":{"const":7}}]}
	]}`)

	one := MustCompile(OneOf(Boolean(), Null()))
	assertSchema(t, one, `{"oneOf":[{"type":"boolean"},{"type":"null"}]}`)
}

func TestCompile_TuplePreservesOrderAndArity(t *testing.T) {
	got, err := Compile(Tuple(String(), Lit("fixed"), Integer()))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	oneOf, ok := got["oneOf"].([]any)
	if !ok || len(oneOf) != 1 {
		t.Fatalf("expected a single positional tuple under oneOf, got %#v", got["oneOf"])
	}
	items, ok := oneOf[0].(JSONSchema)["items"].([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("expected 3 positional items, got %#v", oneOf[0])
	}
	assertSchema(t, got, `{"oneOf":[{"type":"array","items":[{"type":"string"},{"const":"fixed"},{"type":"integer"}]}]}`)
}

func TestCompile_MixedPlainTreesCompileStructurally(t *testing.T) {
	got, err := Compile(Object{
		"horoscope": String(),
		"ascendant": Opt(String()),
		"tags":      Array{Lit("a"), String()},
		"meta":      Object{"v": Lit(1)},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertSchema(t, got, `{
		"type":"object",
		"properties":{
			"horoscope":{"type":"string"},
			"ascendant":{"type":"string"},
			"tags":{"type":"array","items":[{"const":"a"},{"type":"string"}]},
			"meta":{"const":{"v":1}}
		},
		"required":["horoscope","meta","tags"]
	}`)
}

func TestCompile_KindPrecedence(t *testing.T) {
	n := NewNode(KindAllOf)
	n.Of = []Value{String()}
	n.Properties = map[string]Value{"ignored": Integer()}
	got, err := Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := got["allOf"]; !ok {
		t.Fatalf("expected allOf, got %#v", got)
	}
	if _, ok := got["properties"]; ok {
		t.Fatalf("allOf node must not compile as object, got %#v", got)
	}
}

func TestCompile_ShapeErrors(t *testing.T) {
	cases := map[string]Value{
		"empty allOf":  AllOf(),
		"empty anyOf":  AnyOf(),
		"empty oneOf":  OneOf(),
		"empty tuple":  Tuple(),
		"not nil":      Not(nil),
		"list nil":     List(nil),
		"bare object":  NewNode(KindObjectSchema),
		"nested error": ObjectOf(map[string]Value{"deep": AnyOf(String(), Not(nil))}),
	}
	for name, v := range cases {
		_, err := Compile(v)
		var se *ShapeError
		if err == nil || !errors.As(err, &se) {
			t.Fatalf("%s: expected ShapeError, got %v", name, err)
		}
	}

	_, err := Compile(ObjectOf(map[string]Value{"deep": AnyOf(String(), Not(nil))}))
	var se *ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if se.Path != `properties["deep"].anyOf[1]` || se.Kind != KindNot {
		t.Fatalf("unexpected error location: %q %s", se.Path, se.Kind)
	}
}

func TestCompile_StripsMarkersFromKeywords(t *testing.T) {
	n := Fragment(map[string]any{
		Marker: true,
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{Marker: true, "type": "string"},
		},
	})
	got, err := Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	assertSchema(t, got, `{"type":"object","properties":{"x":{"type":"string"}}}`)
}

func TestCompile_DoesNotMutateOrAliasInput(t *testing.T) {
	kw := map[string]any{"type": "string", "enum": []any{"a", "b"}}
	n := Fragment(kw)
	before := canon(t, n.Keywords)

	got := MustCompile(n)
	got["enum"].([]any)[0] = "changed"
	got["extra"] = true

	if after := canon(t, n.Keywords); after != before {
		t.Fatalf("input mutated\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestCompile_NilValue(t *testing.T) {
	var se *ShapeError
	if _, err := Compile(nil); !errors.As(err, &se) {
		t.Fatalf("expected ShapeError for nil value, got %v", err)
	}
}
