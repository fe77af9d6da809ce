package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/unmock/unmock-go/canonicaljson"
)

// Length is the number of hex characters in a fingerprint.
const Length = 8

var scalarOrder = []Field{FieldBody, FieldHostname, FieldMethod, FieldPath, FieldUserID, FieldSignature}

type scalarPattern struct {
	field Field
	re    *regexp2.Regexp
}

type namedPattern struct {
	name string
	re   *regexp2.Regexp
}

type compiledRule struct {
	drop     Field
	scalars  []scalarPattern
	story    []*regexp2.Regexp
	headers  []*regexp2.Regexp
	named    []namedPattern
	matching bool
}

// Hasher applies a fixed ignore configuration. It is safe for concurrent use.
type Hasher struct {
	rules []compiledRule
}

// Compile validates rules and compiles their patterns.
func Compile(rules ...Ignore) (*Hasher, error) {
	h := &Hasher{rules: make([]compiledRule, 0, len(rules))}
	for idx, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", idx, err)
		}
		h.rules = append(h.rules, cr)
	}
	return h, nil
}

func compileRule(r Ignore) (compiledRule, error) {
	if r.Match == nil {
		if !r.Field.Valid() {
			return compiledRule{}, ruleErr(r.Field, "unknown field %q", r.Field)
		}
		return compiledRule{drop: r.Field}, nil
	}

	cr := compiledRule{matching: true}
	p := r.Match
	scalars := p.scalars()
	for _, f := range scalarOrder {
		pat, ok := scalars[f]
		if !ok {
			continue
		}
		re, err := compilePattern(f, pat)
		if err != nil {
			return compiledRule{}, err
		}
		cr.scalars = append(cr.scalars, scalarPattern{field: f, re: re})
	}
	for _, pat := range p.Story {
		re, err := compilePattern(FieldStory, pat)
		if err != nil {
			return compiledRule{}, err
		}
		cr.story = append(cr.story, re)
	}
	for _, pat := range p.Headers.Any {
		re, err := compilePattern(FieldHeaders, pat)
		if err != nil {
			return compiledRule{}, err
		}
		cr.headers = append(cr.headers, re)
	}
	for name, pat := range p.Headers.Named {
		re, err := compilePattern(FieldHeaders, pat)
		if err != nil {
			return compiledRule{}, err
		}
		cr.named = append(cr.named, namedPattern{name: name, re: re})
	}
	return cr, nil
}

func compilePattern(f Field, pat string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pat, regexp2.ECMAScript)
	if err != nil {
		return nil, &PatternError{Field: f, Pattern: pat, Err: err}
	}
	return re, nil
}

// Desensitize returns the working object that Sum hashes: a copy of req with
// every rule applied in order. The caller's request is never modified.
func (h *Hasher) Desensitize(req Request) (map[string]any, error) {
	w := req.working()
	for _, r := range h.rules {
		if err := r.apply(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Sum returns the fingerprint of req.
func (h *Hasher) Sum(req Request) (string, error) {
	w, err := h.Desensitize(req)
	if err != nil {
		return "", err
	}
	return digest(w)
}

// Compute is Compile followed by Sum.
func Compute(req Request, rules ...Ignore) (string, error) {
	h, err := Compile(rules...)
	if err != nil {
		return "", err
	}
	return h.Sum(req)
}

func digest(v any) (string, error) {
	sum := sha256.New()
	if err := canonicaljson.Write(sum, v); err != nil {
		return "", fmt.Errorf("fingerprint: canonicalize: %w", err)
	}
	return hex.EncodeToString(sum.Sum(nil))[:Length], nil
}

func (r compiledRule) apply(w map[string]any) error {
	if !r.matching {
		delete(w, string(r.drop))
		return nil
	}

	for _, sp := range r.scalars {
		s, ok := w[string(sp.field)].(string)
		if !ok {
			// absent, or a non-string body
			continue
		}
		hit, err := sp.re.MatchString(s)
		if err != nil {
			return &PatternError{Field: sp.field, Pattern: sp.re.String(), Err: err}
		}
		if hit {
			delete(w, string(sp.field))
		}
	}

	if len(r.story) > 0 {
		if story, ok := w[string(FieldStory)].([]string); ok {
			kept := make([]string, 0, len(story))
			for _, entry := range story {
				hit, err := anyMatch(FieldStory, r.story, entry)
				if err != nil {
					return err
				}
				if !hit {
					kept = append(kept, entry)
				}
			}
			w[string(FieldStory)] = kept
		}
	}

	if len(r.headers) > 0 || len(r.named) > 0 {
		if headers, ok := w[string(FieldHeaders)].(map[string]string); ok {
			kept := make(map[string]string, len(headers))
			for name, value := range headers {
				hit, err := r.matchHeader(name)
				if err != nil {
					return err
				}
				if !hit {
					kept[name] = value
				}
			}
			w[string(FieldHeaders)] = kept
		}
	}
	return nil
}

func (r compiledRule) matchHeader(name string) (bool, error) {
	hit, err := anyMatch(FieldHeaders, r.headers, name)
	if err != nil || hit {
		return hit, err
	}
	for _, np := range r.named {
		if np.name != name {
			continue
		}
		hit, err := np.re.MatchString(name)
		if err != nil {
			return false, &PatternError{Field: FieldHeaders, Pattern: np.re.String(), Err: err}
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

func anyMatch(f Field, res []*regexp2.Regexp, s string) (bool, error) {
	for _, re := range res {
		hit, err := re.MatchString(s)
		if err != nil {
			return false, &PatternError{Field: f, Pattern: re.String(), Err: err}
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}
