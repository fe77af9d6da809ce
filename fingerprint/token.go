package fingerprint

import (
	"errors"
	"fmt"
	"strings"
)

// ParseToken parses a compact rule as used in environment variables and
// flags: "<field>" drops the field, "<field>=<pattern>" drops what matches.
// For headers the pattern is tested against every header name.
//
//	user_id
//	headers=^X-Request-Id$
//	story=^GET /health
func ParseToken(s string) (Ignore, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ignore{}, errors.New("ignore token: empty")
	}
	name, pat, hasPattern := strings.Cut(s, "=")
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if !f.Valid() {
		return Ignore{}, fmt.Errorf("ignore token: unknown field %q", name)
	}
	if !hasPattern {
		return IgnoreField(f), nil
	}
	if pat == "" {
		return Ignore{}, fmt.Errorf("ignore token: empty pattern for %s", f)
	}

	var p Patterns
	switch f {
	case FieldBody:
		p.Body = pat
	case FieldHostname:
		p.Hostname = pat
	case FieldMethod:
		p.Method = pat
	case FieldPath:
		p.Path = pat
	case FieldUserID:
		p.UserID = pat
	case FieldSignature:
		p.Signature = pat
	case FieldStory:
		p.Story = PatternList{pat}
	case FieldHeaders:
		p.Headers.Any = PatternList{pat}
	}
	return IgnoreMatching(p), nil
}

// ParseTokens parses each token in order.
func ParseTokens(tokens []string) (Rules, error) {
	out := make(Rules, 0, len(tokens))
	for _, tok := range tokens {
		r, err := ParseToken(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// IsToken reports whether s is a syntactically valid ignore token.
func IsToken(s string) bool {
	_, err := ParseToken(s)
	return err == nil
}

// String returns the token form of a field rule or of a pattern rule that sets
// exactly one pattern. Other rules render as their JSON encoding.
func (i Ignore) String() string {
	if i.Match == nil {
		return string(i.Field)
	}
	p := i.Match
	var parts []string
	scalars := p.scalars()
	for _, f := range scalarOrder {
		if s, ok := scalars[f]; ok {
			parts = append(parts, string(f)+"="+s)
		}
	}
	for _, s := range p.Story {
		parts = append(parts, string(FieldStory)+"="+s)
	}
	for _, s := range p.Headers.Any {
		parts = append(parts, string(FieldHeaders)+"="+s)
	}
	if len(parts) == 1 && len(p.Headers.Named) == 0 {
		return parts[0]
	}
	b, err := i.MarshalJSON()
	if err != nil {
		return strings.Join(parts, ",")
	}
	return string(b)
}
