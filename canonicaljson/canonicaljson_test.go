package canonicaljson

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"testing"
)

func TestMarshal_DeterministicAcrossKeyOrder(t *testing.T) {
	inA := []byte(`{
  "b": 1,
  "a": {"y":2,"x":1},
  "arr": [{"b":2,"a":1}]
}`)
	inB := []byte(`{
  "arr": [{"a":1,"b":2}],
  "a": {"x":1,"y":2},
  "b": 1
}`)

	ca, err := Marshal(json.RawMessage(inA))
	if err != nil {
		t.Fatalf("canonical a: %v", err)
	}
	cb, err := Marshal(json.RawMessage(inB))
	if err != nil {
		t.Fatalf("canonical b: %v", err)
	}
	if !bytes.Equal(ca, cb) {
		t.Fatalf("expected identical canonical JSON\nA: %s\nB: %s", string(ca), string(cb))
	}
	if string(ca) != `{"a":{"x":1,"y":2},"arr":[{"a":1,"b":2}],"b":1}` {
		t.Fatalf("unexpected canonical form: %s", ca)
	}
}

func TestMarshal_NativeTypesMatchDecodedJSON(t *testing.T) {
	native := map[string]any{
		"headers": map[string]string{"b": "2", "a": "1"},
		"story":   []string{"x", "y"},
		"count":   3,
		"ratio":   float32(0.5),
		"none":    nil,
		"ok":      true,
	}
	decoded := json.RawMessage(`{"ok":true,"none":null,"ratio":0.5,"count":3.0,"story":["x","y"],"headers":{"a":"1","b":"2"}}`)

	a, err := Marshal(native)
	if err != nil {
		t.Fatalf("marshal native: %v", err)
	}
	b, err := Marshal(decoded)
	if err != nil {
		t.Fatalf("marshal decoded: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical bytes\nnative:  %s\ndecoded: %s", a, b)
	}
}

func TestMarshal_StructsGoThroughEncodingJSON(t *testing.T) {
	type inner struct {
		Z string `json:"z"`
		A int    `json:"a"`
	}
	out, err := Marshal(struct {
		Inner inner `json:"inner"`
		Skip  string `json:"-"`
	}{Inner: inner{Z: "last", A: 1}, Skip: "hidden"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"inner":{"a":1,"z":"last"}}` {
		t.Fatalf("unexpected: %s", out)
	}
}

func TestMarshal_ControlCharShorthandEscapes(t *testing.T) {
	input := map[string]string{
		"bs":  "\b",
		"tab": "\t",
		"nl":  "\n",
		"ff":  "\f",
		"cr":  "\r",
		"nul": "\x00",
		"esc": "\x1b",
	}
	out, err := Marshal(input)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, tc := range []struct {
		key, want string
	}{
		{"bs", `\b`},
		{"tab", `\t`},
		{"nl", `\n`},
		{"ff", `\f`},
		{"cr", `\r`},
		{"nul", `\u0000`},
		{"esc", `\u001b`},
	} {
		if !bytes.Contains(out, []byte(`"`+tc.key+`":"`+tc.want+`"`)) {
			t.Errorf("%s: expected %s in output, got %s", tc.key, tc.want, out)
		}
	}
}

func TestMarshal_NumberForms(t *testing.T) {
	out, err := Marshal(json.RawMessage(`{"n":1e-6,"m":1e-7,"big":1e21,"neg":-0,"int":100}`))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"big":1e+21,"int":100,"m":1e-7,"n":0.000001,"neg":0}`
	if string(out) != want {
		t.Fatalf("unexpected numbers\nwant: %s\ngot:  %s", want, out)
	}
}

func TestMarshal_RejectsTrailingData(t *testing.T) {
	if _, err := Marshal(json.RawMessage(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestWrite_StreamsIntoHash(t *testing.T) {
	v := map[string]any{"b": []any{1, "two"}, "a": "x"}
	h := sha256.New()
	if err := Write(h, v); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := sha256.Sum256(b)
	if !bytes.Equal(h.Sum(nil), want[:]) {
		t.Fatalf("streamed digest differs from buffered digest")
	}
}

func TestMarshal_ByteSliceIsBase64(t *testing.T) {
	out, err := Marshal(map[string]any{"body": []byte("hello")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"body":"aGVsbG8="}` {
		t.Fatalf("unexpected: %s", out)
	}

	quoted, err := Marshal([]byte(`"hello"`))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(quoted) == `"hello"` {
		t.Fatalf("[]byte must not be read as JSON text")
	}
}

func TestMarshal_RejectsInvalidUTF8(t *testing.T) {
	for _, v := range []any{
		"a\xffb",
		map[string]any{"k\xfe": 1},
		map[string]string{"k": "\xff"},
		[]string{"ok", "\xfe"},
	} {
		if _, err := Marshal(v); err == nil {
			t.Errorf("%q: expected error for invalid UTF-8", v)
		}
	}
}
