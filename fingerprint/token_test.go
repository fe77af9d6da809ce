package fingerprint

import "testing"

func TestParseToken(t *testing.T) {
	r, err := ParseToken(" User_ID ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Field != FieldUserID || r.Match != nil {
		t.Fatalf("unexpected rule %#v", r)
	}
	if r.String() != "user_id" {
		t.Fatalf("unexpected string %q", r.String())
	}

	r, err = ParseToken("headers=^X-Request-Id$")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Match == nil || len(r.Match.Headers.Any) != 1 || r.Match.Headers.Any[0] != "^X-Request-Id$" {
		t.Fatalf("unexpected rule %#v", r)
	}
	if r.String() != "headers=^X-Request-Id$" {
		t.Fatalf("unexpected string %q", r.String())
	}

	r, err = ParseToken("path=a=b")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Match.Path != "a=b" {
		t.Fatalf("expected pattern to keep later '=', got %q", r.Match.Path)
	}
}

func TestParseToken_RejectsInvalid(t *testing.T) {
	cases := []string{
		"",
		" ",
		"cookies",
		"=x",
		"path=",
	}
	for _, c := range cases {
		if _, err := ParseToken(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
		if IsToken(c) {
			t.Fatalf("expected IsToken false for %q", c)
		}
	}
}

func TestParseTokens(t *testing.T) {
	rules, err := ParseTokens([]string{"body", "story=^GET"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rules) != 2 || rules[1].Match.Story[0] != "^GET" {
		t.Fatalf("unexpected rules %#v", rules)
	}
	if _, err := ParseTokens([]string{"body", "nope"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIgnoreString_MultiplePatternsRendersJSON(t *testing.T) {
	r := IgnoreMatching(Patterns{Path: "a", Method: "b"})
	if got := r.String(); got != `{"method":"b","path":"a"}` {
		t.Fatalf("unexpected string %q", got)
	}
}
