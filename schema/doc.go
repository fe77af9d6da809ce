// Package schema lowers author-facing response shapes into strict JSON Schema.
//
// A response shape is a Value. Plain values (Literal, Array, Object) mean
// "exactly this JSON"; dynamic values (*Node, built with String, ObjectOf,
// AnyOf, Tuple and friends, or decoded from documents carrying the "$dynamic"
// marker) mean "anything matching this schema". Compile turns a Value into a
// JSONSchema that carries no authoring markers:
//
//	s, err := schema.Compile(schema.Object{
//	    "horoscope": schema.String(),
//	    "ascendant": schema.Opt(schema.String()),
//	})
//
// This package is pure: no IO, no global state, and Compile never mutates its
// input.
package schema
