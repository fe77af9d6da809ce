package unmock

import (
	"fmt"
	"strings"

	"github.com/unmock/unmock-go/schema"
)

// HTTPMethod is a lower-case HTTP verb as used in endpoint definitions.
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "get"
	MethodHead    HTTPMethod = "head"
	MethodPost    HTTPMethod = "post"
	MethodPut     HTTPMethod = "put"
	MethodPatch   HTTPMethod = "patch"
	MethodDelete  HTTPMethod = "delete"
	MethodOptions HTTPMethod = "options"
	MethodTrace   HTTPMethod = "trace"
)

var methods = []HTTPMethod{
	MethodGet, MethodHead, MethodPost, MethodPut,
	MethodPatch, MethodDelete, MethodOptions, MethodTrace,
}

// Methods returns every supported verb in declaration order.
func Methods() []HTTPMethod {
	out := make([]HTTPMethod, len(methods))
	copy(out, methods)
	return out
}

// ParseMethod accepts a verb in any case.
func ParseMethod(s string) (HTTPMethod, error) {
	m := HTTPMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unmock: unsupported http method %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported verbs.
func (m HTTPMethod) Valid() bool {
	for _, x := range methods {
		if x == m {
			return true
		}
	}
	return false
}

// DefaultStatus is the status code a reply gets when none is given:
// 201 for post, 204 for put and patch, 200 otherwise.
func (m HTTPMethod) DefaultStatus() int {
	switch m {
	case MethodPost:
		return 201
	case MethodPut, MethodPatch:
		return 204
	default:
		return 200
	}
}

const (
	// MinStatusCode and MaxStatusCode bound the status codes a definition may carry.
	MinStatusCode = 100
	MaxStatusCode = 599
)

// EndpointDefinition maps one (baseUrl, method, endpoint, statusCode) to the
// schema a generated response must satisfy.
type EndpointDefinition struct {
	BaseURL    string            `json:"baseUrl"`
	Method     HTTPMethod        `json:"method"`
	Endpoint   string            `json:"endpoint"`
	StatusCode int               `json:"statusCode"`
	Response   schema.JSONSchema `json:"response"`
	Name       string            `json:"name,omitempty"`
}

// Key returns the identity of d within a ServiceStore.
func (d EndpointDefinition) Key() EndpointKey {
	return EndpointKey{
		BaseURL:    d.BaseURL,
		Method:     d.Method,
		Endpoint:   d.Endpoint,
		StatusCode: d.StatusCode,
	}
}

// EndpointKey uniquely identifies an EndpointDefinition.
type EndpointKey struct {
	BaseURL    string
	Method     HTTPMethod
	Endpoint   string
	StatusCode int
}

func (k EndpointKey) String() string {
	return fmt.Sprintf("%s %s%s %d", strings.ToUpper(string(k.Method)), k.BaseURL, k.Endpoint, k.StatusCode)
}

// Less orders keys by base URL, endpoint, method and status code.
func (k EndpointKey) Less(o EndpointKey) bool {
	if k.BaseURL != o.BaseURL {
		return k.BaseURL < o.BaseURL
	}
	if k.Endpoint != o.Endpoint {
		return k.Endpoint < o.Endpoint
	}
	if k.Method != o.Method {
		return k.Method < o.Method
	}
	return k.StatusCode < o.StatusCode
}

// NormalizeEndpoint prefixes p with "/" when it does not already start with one.
func NormalizeEndpoint(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// ServiceStore is the keyed collection the builder upserts into. The returned
// store is the one subsequent calls should use; implementations may return
// themselves.
type ServiceStore interface {
	UpdateOrAdd(def EndpointDefinition) (ServiceStore, error)
}
