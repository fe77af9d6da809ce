package fingerprint

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Ignore is one ignore rule. With Match nil it drops Field entirely;
// otherwise every pattern set in Match is applied and Field is unused.
type Ignore struct {
	Field Field
	Match *Patterns
}

// IgnoreField drops f from the hashed request.
func IgnoreField(f Field) Ignore { return Ignore{Field: f} }

// IgnoreMatching removes the parts of the request that match p.
func IgnoreMatching(p Patterns) Ignore { return Ignore{Match: &p} }

// Patterns selects request content to drop by regular expression. Empty
// strings and lists are unset.
//
// Scalar patterns drop their field when the field's value matches. Body
// patterns only apply to string bodies, and Signature only when a signature
// is present. Story patterns drop the matching entries. Header patterns are
// evaluated against header names and drop the matching headers.
type Patterns struct {
	Body      string
	Hostname  string
	Method    string
	Path      string
	UserID    string
	Signature string
	Story     PatternList
	Headers   HeaderPatterns
}

// PatternList is one or more patterns; an entry is dropped when any matches.
type PatternList []string

// HeaderPatterns drops headers by name. Any holds patterns tested against
// every header name. Named maps a header name to a pattern that is tested
// against that same name, so a header is dropped only when its name equals
// the key and the pattern matches it.
type HeaderPatterns struct {
	Any   PatternList
	Named map[string]string
}

func (h HeaderPatterns) empty() bool { return len(h.Any) == 0 && len(h.Named) == 0 }

// Rules is an ordered list of ignore rules. It decodes from a single rule or
// from a list of rules. A null leaves the value unchanged.
type Rules []Ignore

func (r *Rules) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	out, err := rulesFromValue(v)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

func (r *Rules) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	out, err := rulesFromValue(v)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

func (i *Ignore) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	out, err := ruleFromValue(v)
	if err != nil {
		return err
	}
	*i = out
	return nil
}

func (i *Ignore) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	out, err := ruleFromValue(v)
	if err != nil {
		return err
	}
	*i = out
	return nil
}

// MarshalJSON encodes a field rule as its name and a pattern rule as an object
// holding only the patterns that are set.
func (i Ignore) MarshalJSON() ([]byte, error) {
	if i.Match == nil {
		return json.Marshal(string(i.Field))
	}
	p := i.Match
	m := map[string]any{}
	for f, s := range p.scalars() {
		m[string(f)] = s
	}
	if len(p.Story) > 0 {
		m[string(FieldStory)] = []string(p.Story)
	}
	switch {
	case len(p.Headers.Named) > 0 && len(p.Headers.Any) == 0:
		m[string(FieldHeaders)] = p.Headers.Named
	case len(p.Headers.Any) > 0 && len(p.Headers.Named) == 0:
		m[string(FieldHeaders)] = []string(p.Headers.Any)
	case !p.Headers.empty():
		return nil, fmt.Errorf("fingerprint: header patterns cannot mix names and lists")
	}
	return json.Marshal(m)
}

// scalars returns the scalar patterns that are set, keyed by field.
func (p *Patterns) scalars() map[Field]string {
	out := map[Field]string{}
	for f, s := range map[Field]string{
		FieldBody:      p.Body,
		FieldHostname:  p.Hostname,
		FieldMethod:    p.Method,
		FieldPath:      p.Path,
		FieldUserID:    p.UserID,
		FieldSignature: p.Signature,
	} {
		if s != "" {
			out[f] = s
		}
	}
	return out
}

func rulesFromValue(v any) (Rules, error) {
	list, ok := v.([]any)
	if !ok {
		r, err := ruleFromValue(v)
		if err != nil {
			return nil, err
		}
		return Rules{r}, nil
	}
	out := make(Rules, 0, len(list))
	for idx, item := range list {
		r, err := ruleFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", idx, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func ruleFromValue(v any) (Ignore, error) {
	switch x := v.(type) {
	case string:
		f := Field(x)
		if !f.Valid() {
			return Ignore{}, ruleErr(x, "unknown field %q", x)
		}
		return IgnoreField(f), nil
	case map[string]any:
		p, err := patternsFromMap(x)
		if err != nil {
			return Ignore{}, err
		}
		return IgnoreMatching(p), nil
	}
	return Ignore{}, ruleErr(v, "must be a field name or an object of patterns")
}

func patternsFromMap(m map[string]any) (Patterns, error) {
	var p Patterns
	keys := slices.Sorted(maps.Keys(m))
	for _, k := range keys {
		v := m[k]
		switch f := Field(k); f {
		case FieldBody, FieldHostname, FieldMethod, FieldPath, FieldUserID, FieldSignature:
			s, ok := v.(string)
			if !ok {
				return Patterns{}, ruleErr(m, "%s: pattern must be a string", k)
			}
			switch f {
			case FieldBody:
				p.Body = s
			case FieldHostname:
				p.Hostname = s
			case FieldMethod:
				p.Method = s
			case FieldPath:
				p.Path = s
			case FieldUserID:
				p.UserID = s
			case FieldSignature:
				p.Signature = s
			}
		case FieldStory:
			list, err := patternListFrom(v)
			if err != nil {
				return Patterns{}, ruleErr(m, "story: %v", err)
			}
			p.Story = list
		case FieldHeaders:
			if named, ok := v.(map[string]any); ok {
				p.Headers.Named = make(map[string]string, len(named))
				for name, pat := range named {
					s, ok := pat.(string)
					if !ok {
						return Patterns{}, ruleErr(m, "headers[%q]: pattern must be a string", name)
					}
					p.Headers.Named[name] = s
				}
				continue
			}
			list, err := patternListFrom(v)
			if err != nil {
				return Patterns{}, ruleErr(m, "headers: %v", err)
			}
			p.Headers.Any = list
		default:
			return Patterns{}, ruleErr(m, "unknown field %q", k)
		}
	}
	return p, nil
}

func patternListFrom(v any) (PatternList, error) {
	switch x := v.(type) {
	case string:
		return PatternList{x}, nil
	case []any:
		out := make(PatternList, 0, len(x))
		for idx, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("[%d]: pattern must be a string", idx)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("must be a pattern or a list of patterns")
}
