package fingerprint

import (
	"errors"
	"regexp"
	"testing"
)

func sample() Request {
	return Request{
		Body:     "hello",
		Headers:  map[string]string{"Accept": "application/json"},
		Hostname: "api.example.com",
		Method:   "get",
		Path:     "/v1/users",
		Story:    []string{},
		UserID:   "u1",
	}
}

func mustCompute(t *testing.T, req Request, rules ...Ignore) string {
	t.Helper()
	fp, err := Compute(req, rules...)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return fp
}

func strPtr(s string) *string { return &s }

func TestCompute_KnownValues(t *testing.T) {
	if got := mustCompute(t, sample()); got != "300d4482" {
		t.Fatalf("unexpected fingerprint %q", got)
	}
	if got := mustCompute(t, sample(), IgnoreField(FieldUserID)); got != "7a94805e" {
		t.Fatalf("unexpected fingerprint with user_id ignored %q", got)
	}
}

func TestCompute_ShapeOfFingerprint(t *testing.T) {
	fp := mustCompute(t, sample())
	if !regexp.MustCompile(`^[0-9a-f]{8}$`).MatchString(fp) {
		t.Fatalf("expected 8 lower-case hex characters, got %q", fp)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	rules := []Ignore{IgnoreField(FieldBody), IgnoreMatching(Patterns{Story: PatternList{"^x"}})}
	a := mustCompute(t, sample(), rules...)
	for range 5 {
		if b := mustCompute(t, sample(), rules...); b != a {
			t.Fatalf("expected %q, got %q", a, b)
		}
	}
}

func TestCompute_IgnoredBodyDoesNotMatter(t *testing.T) {
	a, b := sample(), sample()
	b.Body = map[string]any{"completely": []any{"different"}}
	if mustCompute(t, a, IgnoreField(FieldBody)) != mustCompute(t, b, IgnoreField(FieldBody)) {
		t.Fatalf("expected equal fingerprints with body ignored")
	}
	if mustCompute(t, a) == mustCompute(t, b) {
		t.Fatalf("expected different fingerprints without ignore")
	}
}

func TestCompute_EveryFieldContributes(t *testing.T) {
	base := sample()
	base.Signature = strPtr("sig")
	mutations := map[Field]func(*Request){
		FieldBody:      func(r *Request) { r.Body = "bye" },
		FieldHeaders:   func(r *Request) { r.Headers = map[string]string{"Accept": "text/plain"} },
		FieldHostname:  func(r *Request) { r.Hostname = "other.example.com" },
		FieldMethod:    func(r *Request) { r.Method = "post" },
		FieldPath:      func(r *Request) { r.Path = "/v2/users" },
		FieldStory:     func(r *Request) { r.Story = []string{"one"} },
		FieldUserID:    func(r *Request) { r.UserID = "u2" },
		FieldSignature: func(r *Request) { r.Signature = strPtr("other") },
	}
	want := mustCompute(t, base)
	for f, mutate := range mutations {
		changed := base
		mutate(&changed)
		if mustCompute(t, changed) == want {
			t.Fatalf("%s: expected fingerprint to change", f)
		}
		if mustCompute(t, changed, IgnoreField(f)) != mustCompute(t, base, IgnoreField(f)) {
			t.Fatalf("%s: expected equal fingerprints with field ignored", f)
		}
	}
}

func TestCompute_UserIDScenario(t *testing.T) {
	a, b := sample(), sample()
	a.UserID, b.UserID = "u1", "u2"
	if mustCompute(t, a, IgnoreField(FieldUserID)) != mustCompute(t, b, IgnoreField(FieldUserID)) {
		t.Fatalf("expected equal fingerprints under user_id ignore")
	}
	if mustCompute(t, a) == mustCompute(t, b) {
		t.Fatalf("expected different fingerprints without ignore")
	}
}

func TestCompute_InsertionAndRuleOrderIrrelevant(t *testing.T) {
	a, b := sample(), sample()
	a.Headers = map[string]string{}
	a.Headers["A"] = "1"
	a.Headers["B"] = "2"
	b.Headers = map[string]string{}
	b.Headers["B"] = "2"
	b.Headers["A"] = "1"
	if mustCompute(t, a) != mustCompute(t, b) {
		t.Fatalf("expected header insertion order not to matter")
	}

	x := mustCompute(t, a, IgnoreField(FieldBody), IgnoreField(FieldUserID))
	y := mustCompute(t, a, IgnoreField(FieldUserID), IgnoreField(FieldBody))
	if x != y {
		t.Fatalf("expected deletion order not to matter")
	}
}

func TestCompute_NilAndEmptyCollectionsAreEqual(t *testing.T) {
	a, b := sample(), sample()
	a.Headers, a.Story = nil, nil
	b.Headers, b.Story = map[string]string{}, []string{}
	if mustCompute(t, a) != mustCompute(t, b) {
		t.Fatalf("expected nil and empty collections to hash the same")
	}
}

func TestCompute_HeaderByName(t *testing.T) {
	a, b := sample(), sample()
	a.Headers = map[string]string{"Accept": "application/json", "X-Request-Id": "1"}
	b.Headers = map[string]string{"Accept": "application/json"}
	rule := IgnoreMatching(Patterns{Headers: HeaderPatterns{Any: PatternList{"^X-Request-Id$"}}})

	if mustCompute(t, a, rule) != mustCompute(t, b, rule) {
		t.Fatalf("expected presence of ignored header not to matter")
	}
	b.Headers["X-Request-Id"] = "2"
	if mustCompute(t, a, rule) != mustCompute(t, b, rule) {
		t.Fatalf("expected value of ignored header not to matter")
	}
	b.Headers["Accept"] = "text/plain"
	if mustCompute(t, a, rule) == mustCompute(t, b, rule) {
		t.Fatalf("expected other headers to still count")
	}
}

func TestDesensitize_HeaderPatterns(t *testing.T) {
	req := sample()
	req.Headers = map[string]string{"Accept": "a", "X-Trace": "t", "X-Id": "i", "Cookie": "c"}

	h, err := Compile(IgnoreMatching(Patterns{Headers: HeaderPatterns{
		Any:   PatternList{"^X-T", "^Nope$"},
		Named: map[string]string{"Cookie": "ook", "Accept": "^Z"},
	}}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	w, err := h.Desensitize(req)
	if err != nil {
		t.Fatalf("desensitize: %v", err)
	}
	headers := w["headers"].(map[string]string)
	if len(headers) != 2 || headers["Accept"] != "a" || headers["X-Id"] != "i" {
		t.Fatalf("unexpected headers %v", headers)
	}
	if len(req.Headers) != 4 {
		t.Fatalf("caller's headers mutated: %v", req.Headers)
	}
}

func TestDesensitize_StoryPatterns(t *testing.T) {
	req := sample()
	req.Story = []string{"GET /health", "POST /users", "GET /users/1", "DELETE /x"}
	h, err := Compile(IgnoreMatching(Patterns{Story: PatternList{"^GET", "DELETE"}}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	w, err := h.Desensitize(req)
	if err != nil {
		t.Fatalf("desensitize: %v", err)
	}
	story := w["story"].([]string)
	if len(story) != 1 || story[0] != "POST /users" {
		t.Fatalf("unexpected story %v", story)
	}
	if len(req.Story) != 4 || req.Story[0] != "GET /health" {
		t.Fatalf("caller's story mutated: %v", req.Story)
	}
}

func TestDesensitize_ScalarPatterns(t *testing.T) {
	req := sample()
	h, err := Compile(IgnoreMatching(Patterns{Hostname: `example\.com$`, UserID: "^u", Method: "^post$"}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	w, err := h.Desensitize(req)
	if err != nil {
		t.Fatalf("desensitize: %v", err)
	}
	if _, ok := w["hostname"]; ok {
		t.Fatalf("expected hostname dropped")
	}
	if _, ok := w["user_id"]; ok {
		t.Fatalf("expected user_id dropped by the same rule")
	}
	if _, ok := w["method"]; !ok {
		t.Fatalf("expected non-matching method kept")
	}

	want := mustCompute(t, req, IgnoreField(FieldHostname), IgnoreField(FieldUserID))
	if got, _ := h.Sum(req); got != want {
		t.Fatalf("expected pattern drop to equal field drop: %q vs %q", got, want)
	}
}

func TestDesensitize_BodyPatternOnlyForStrings(t *testing.T) {
	rule := IgnoreMatching(Patterns{Body: ".*"})

	str := sample()
	w, err := mustHasher(t, rule).Desensitize(str)
	if err != nil {
		t.Fatalf("desensitize: %v", err)
	}
	if _, ok := w["body"]; ok {
		t.Fatalf("expected string body dropped")
	}

	obj := sample()
	obj.Body = map[string]any{"a": "b"}
	w, err = mustHasher(t, rule).Desensitize(obj)
	if err != nil {
		t.Fatalf("desensitize: %v", err)
	}
	if _, ok := w["body"]; !ok {
		t.Fatalf("expected structured body kept")
	}
}

func TestDesensitize_SignatureOnlyWhenPresent(t *testing.T) {
	rule := IgnoreMatching(Patterns{Signature: ".*"})
	plain := sample()
	w, err := mustHasher(t, rule).Desensitize(plain)
	if err != nil {
		t.Fatalf("desensitize: %v", err)
	}
	if _, ok := w["signature"]; ok {
		t.Fatalf("expected no signature key for absent signature")
	}

	signed := sample()
	signed.Signature = strPtr("abc")
	if mustCompute(t, signed, rule) != mustCompute(t, plain) {
		t.Fatalf("expected matching signature dropped")
	}
}

func TestCompile_InvalidPattern(t *testing.T) {
	cases := []struct {
		rule  Ignore
		field Field
	}{
		{IgnoreMatching(Patterns{Path: "("}), FieldPath},
		{IgnoreMatching(Patterns{Story: PatternList{"ok", "[z-a]"}}), FieldStory},
		{IgnoreMatching(Patterns{Headers: HeaderPatterns{Named: map[string]string{"A": "(?<"}}}), FieldHeaders},
	}
	for _, c := range cases {
		_, err := Compile(IgnoreField(FieldBody), c.rule)
		var pe *PatternError
		if !errors.As(err, &pe) {
			t.Fatalf("expected PatternError, got %v", err)
		}
		if pe.Field != c.field {
			t.Fatalf("expected field %s, got %s", c.field, pe.Field)
		}
		if _, err := Compute(sample(), c.rule); !errors.As(err, &pe) {
			t.Fatalf("expected Compute to surface PatternError, got %v", err)
		}
	}
}

func TestCompile_UnknownField(t *testing.T) {
	_, err := Compile(IgnoreField("cookies"))
	var re *RuleError
	if !errors.As(err, &re) {
		t.Fatalf("expected RuleError, got %v", err)
	}
}

func TestCompute_RulesAfterDropAreNoops(t *testing.T) {
	req := sample()
	req.Story = []string{"a"}
	a := mustCompute(t, req,
		IgnoreField(FieldStory),
		IgnoreField(FieldHeaders),
		IgnoreMatching(Patterns{Story: PatternList{"a"}, Headers: HeaderPatterns{Any: PatternList{"."}}}),
	)
	b := mustCompute(t, req, IgnoreField(FieldStory), IgnoreField(FieldHeaders))
	if a != b {
		t.Fatalf("expected pattern rules on dropped fields to do nothing")
	}
}

func mustHasher(t *testing.T, rules ...Ignore) *Hasher {
	t.Helper()
	h, err := Compile(rules...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return h
}

func TestCompute_ByteSliceBody(t *testing.T) {
	raw := sample()
	raw.Body = []byte("hello")
	a := mustCompute(t, raw)
	if a == mustCompute(t, sample()) {
		t.Fatalf("[]byte body must not hash like the equal string body")
	}

	quoted := sample()
	quoted.Body = []byte(`"hello"`)
	if mustCompute(t, quoted) == mustCompute(t, sample()) {
		t.Fatalf("[]byte body must not be read as JSON text")
	}

	b64 := sample()
	b64.Body = "aGVsbG8="
	if mustCompute(t, b64) != a {
		t.Fatalf("[]byte body should hash as its base64 string")
	}
}

func TestCompute_InvalidUTF8IsAnError(t *testing.T) {
	for _, mutate := range []func(*Request){
		func(r *Request) { r.Body = "a\xffb" },
		func(r *Request) { r.Headers = map[string]string{"X-Id": "\xfe"} },
		func(r *Request) { r.Story = []string{"\xff"} },
	} {
		req := sample()
		mutate(&req)
		if _, err := Compute(req); err == nil {
			t.Fatalf("expected error for invalid UTF-8 in %+v", req)
		}
	}
}
