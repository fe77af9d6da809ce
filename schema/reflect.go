package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Reflect derives a dynamic fragment from the Go type of v using struct tags
// (json, jsonschema). Definitions are inlined so the fragment stands alone.
//
//	type Horoscope struct {
//	    Sign string `json:"sign" jsonschema:"enum=aries,enum=taurus"`
//	}
//	v, err := schema.Reflect(&Horoscope{})
func Reflect(v any) (*Node, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(v)
	if s == nil {
		return nil, fmt.Errorf("schema: cannot reflect %T", v)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal reflected %T: %w", v, err)
	}
	doc, err := decodeJSON(b)
	if err != nil {
		return nil, fmt.Errorf("schema: decode reflected %T: %w", v, err)
	}
	m, ok := asMap(doc)
	if !ok {
		return nil, fmt.Errorf("schema: reflected %T is not an object schema", v)
	}
	delete(m, "$schema")
	delete(m, "$id")
	return &Node{kind: KindFragment, Keywords: m}, nil
}
