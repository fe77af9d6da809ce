package fingerprint

import (
	"maps"
	"slices"
)

// Field names a top-level request field.
type Field string

const (
	FieldBody      Field = "body"
	FieldHeaders   Field = "headers"
	FieldHostname  Field = "hostname"
	FieldMethod    Field = "method"
	FieldPath      Field = "path"
	FieldStory     Field = "story"
	FieldUserID    Field = "user_id"
	FieldSignature Field = "signature"
)

var fields = []Field{
	FieldBody, FieldHeaders, FieldHostname, FieldMethod,
	FieldPath, FieldStory, FieldUserID, FieldSignature,
}

// Fields returns every request field.
func Fields() []Field { return slices.Clone(fields) }

// Valid reports whether f names a request field.
func (f Field) Valid() bool { return slices.Contains(fields, f) }

// Request is the hashable view of an HTTP request. Body is either a string or
// a JSON-serializable value; a []byte body hashes as its base64 encoding, as
// encoding/json writes it. Strings that are not valid UTF-8 fail to hash.
type Request struct {
	Body      any               `json:"body"`
	Headers   map[string]string `json:"headers"`
	Hostname  string            `json:"hostname"`
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Story     []string          `json:"story"`
	UserID    string            `json:"user_id"`
	Signature *string           `json:"signature,omitempty"`
}

// working returns a copy of r keyed by field name. Headers and story are
// copied so filtering never reaches the caller's values. A nil header map or
// story hashes the same as an empty one.
func (r Request) working() map[string]any {
	headers := maps.Clone(r.Headers)
	if headers == nil {
		headers = map[string]string{}
	}
	story := slices.Clone(r.Story)
	if story == nil {
		story = []string{}
	}
	w := map[string]any{
		string(FieldBody):     r.Body,
		string(FieldHeaders):  headers,
		string(FieldHostname): r.Hostname,
		string(FieldMethod):   r.Method,
		string(FieldPath):     r.Path,
		string(FieldStory):    story,
		string(FieldUserID):   r.UserID,
	}
	if r.Signature != nil {
		w[string(FieldSignature)] = *r.Signature
	}
	return w
}
