// Package canonicaljson writes RFC 8785 (JCS) canonical JSON.
//
// The output is the pre-image for request fingerprints, so two values that are
// equal as JSON always produce identical bytes regardless of map iteration order
// or the Go types used to build them (an int and a float64 of the same value
// encode identically).
package canonicaljson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Marshal returns the canonical encoding of v.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the canonical encoding of v into w.
//
// Common JSON shapes (maps, slices, strings, numbers, booleans, nil) are encoded
// directly. Any other value is first passed through encoding/json and the result
// re-read with UseNumber, so struct tags and custom marshalers are honoured;
// a []byte therefore encodes as its base64 string. A json.RawMessage is parsed
// as JSON text. Strings that are not valid UTF-8 are an error.
func Write(w io.Writer, v any) error {
	e := &encoder{w: bufio.NewWriter(w)}
	if err := e.value(v); err != nil {
		return err
	}
	return e.w.Flush()
}

type encoder struct {
	w *bufio.Writer
}

func (e *encoder) value(v any) error {
	switch x := v.(type) {
	case nil:
		e.w.WriteString("null")
	case bool:
		if x {
			e.w.WriteString("true")
		} else {
			e.w.WriteString("false")
		}
	case string:
		return e.string(x)
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			return fmt.Errorf("canonicaljson: number %q: %w", x.String(), err)
		}
		return e.number(f)
	case float64:
		return e.number(x)
	case float32:
		return e.number(float64(x))
	case int:
		return e.number(float64(x))
	case int8:
		return e.number(float64(x))
	case int16:
		return e.number(float64(x))
	case int32:
		return e.number(float64(x))
	case int64:
		return e.number(float64(x))
	case uint:
		return e.number(float64(x))
	case uint8:
		return e.number(float64(x))
	case uint16:
		return e.number(float64(x))
	case uint32:
		return e.number(float64(x))
	case uint64:
		return e.number(float64(x))
	case []any:
		e.w.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				e.w.WriteByte(',')
			}
			if err := e.value(item); err != nil {
				return err
			}
		}
		e.w.WriteByte(']')
	case []string:
		e.w.WriteByte('[')
		for i, item := range x {
			if i > 0 {
				e.w.WriteByte(',')
			}
			if err := e.string(item); err != nil {
				return err
			}
		}
		e.w.WriteByte(']')
	case map[string]any:
		return e.object(keysOf(x), func(k string) error { return e.value(x[k]) })
	case map[string]string:
		return e.object(keysOf(x), func(k string) error { return e.string(x[k]) })
	case json.RawMessage:
		return e.raw(x)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return e.raw(b)
	}
	return nil
}

func (e *encoder) raw(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("canonicaljson: invalid JSON: trailing data")
	}
	return e.value(v)
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// object writes members sorted by UTF-16 code units (RFC 8785 §3.2.3).
func (e *encoder) object(keys []string, member func(k string) error) error {
	units := make(map[string][]uint16, len(keys))
	for _, k := range keys {
		units[k] = utf16.Encode([]rune(k))
	}
	slices.SortFunc(keys, func(a, b string) int {
		return slices.Compare(units[a], units[b])
	})

	e.w.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			e.w.WriteByte(',')
		}
		if err := e.string(k); err != nil {
			return err
		}
		e.w.WriteByte(':')
		if err := member(k); err != nil {
			return err
		}
	}
	e.w.WriteByte('}')
	return nil
}

const hexDigits = "0123456789abcdef"

// string rejects invalid UTF-8; RFC 8785 input is I-JSON.
func (e *encoder) string(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("canonicaljson: string %q is not valid UTF-8", s)
	}
	e.w.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			e.w.WriteString(`\\`)
		case '"':
			e.w.WriteString(`\"`)
		case '\b':
			e.w.WriteString(`\b`)
		case '\t':
			e.w.WriteString(`\t`)
		case '\n':
			e.w.WriteString(`\n`)
		case '\f':
			e.w.WriteString(`\f`)
		case '\r':
			e.w.WriteString(`\r`)
		default:
			if r <= 0x1F {
				e.w.WriteString(`\u00`)
				e.w.WriteByte(hexDigits[r>>4])
				e.w.WriteByte(hexDigits[r&0xF])
				continue
			}
			e.w.WriteRune(r)
		}
	}
	e.w.WriteByte('"')
	return nil
}

// number writes f using ECMAScript Number.prototype.toString rules.
func (e *encoder) number(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("canonicaljson: NaN and Infinity are not valid JSON numbers")
	}
	if f == 0 {
		e.w.WriteByte('0')
		return nil
	}
	if abs := math.Abs(f); abs < 1e21 && abs >= 1e-6 {
		e.w.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	}
	e.w.WriteString(trimExponent(strconv.FormatFloat(f, 'e', -1, 64)))
	return nil
}

// trimExponent turns Go's "1e-07" / "1e+21" into ECMAScript's "1e-7" / "1e+21".
func trimExponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
