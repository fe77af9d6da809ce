package unmock

import (
	"fmt"
	"net/url"
	"strings"
)

type validateOptions struct {
	requireName    bool
	requireBaseURL bool
}

// ValidateOption configures EndpointDefinition.Validate.
type ValidateOption func(*validateOptions)

// WithRequireName rejects definitions without a service name.
func WithRequireName() ValidateOption {
	return func(o *validateOptions) { o.requireName = true }
}

// WithRequireAbsoluteBaseURL requires baseUrl to parse as an absolute URL with a host.
// By default any non-empty base URL is accepted.
func WithRequireAbsoluteBaseURL() ValidateOption {
	return func(o *validateOptions) { o.requireBaseURL = true }
}

// Validate performs shape-level checks on a definition. It does not validate
// the response schema against a JSON Schema metaschema.
func (d EndpointDefinition) Validate(opts ...ValidateOption) error {
	var o validateOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var errs []string

	if strings.TrimSpace(d.BaseURL) == "" {
		errs = append(errs, "baseUrl: required")
	} else if o.requireBaseURL {
		u, err := url.Parse(d.BaseURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			errs = append(errs, fmt.Sprintf("baseUrl: must be an absolute URL (got %q)", d.BaseURL))
		}
	}

	if !d.Method.Valid() {
		errs = append(errs, fmt.Sprintf("method: unsupported %q", d.Method))
	}

	if !strings.HasPrefix(d.Endpoint, "/") {
		errs = append(errs, fmt.Sprintf("endpoint: must start with \"/\" (got %q)", d.Endpoint))
	}

	if err := CheckStatusCode(d.StatusCode); err != nil {
		errs = append(errs, fmt.Sprintf("statusCode: %v", err))
	}

	if d.Response == nil {
		errs = append(errs, "response: required")
	}

	if o.requireName && strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "name: required")
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Problems: errs}
}

// ValidationError is a deterministic, multi-problem validation error.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "invalid endpoint definition"
	}
	return "invalid endpoint definition: " + strings.Join(e.Problems, "; ")
}

// StatusCodeError reports a status code outside [MinStatusCode, MaxStatusCode].
type StatusCodeError struct {
	Code int
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("status code %d out of range [%d, %d]", e.Code, MinStatusCode, MaxStatusCode)
}

// CheckStatusCode returns a *StatusCodeError when code is not a valid HTTP status.
func CheckStatusCode(code int) error {
	if code < MinStatusCode || code > MaxStatusCode {
		return &StatusCodeError{Code: code}
	}
	return nil
}
