package mock

import (
	"fmt"
	"math"

	"github.com/unmock/unmock-go"
	"github.com/unmock/unmock-go/schema"
)

// Response accumulates the status code and compiled payload for one
// (method, endpoint) pair. Each reply writes the current state to the store.
type Response struct {
	svc        *Service
	method     unmock.HTTPMethod
	endpoint   string
	statusCode int
	data       schema.JSONSchema
}

// Endpoint returns the normalized endpoint path.
func (r *Response) Endpoint() string { return r.endpoint }

// StatusCode returns the status code the next reply will use unless overridden.
func (r *Response) StatusCode() int { return r.statusCode }

// Reply stores data under an explicit status code. Status codes outside
// [100, 599] fail with *unmock.StatusCodeError.
func (r *Response) Reply(status int, data any) (*Service, error) {
	if err := unmock.CheckStatusCode(status); err != nil {
		return nil, err
	}
	compiled, err := r.compile(data)
	if err != nil {
		return nil, err
	}
	return r.commit(status, compiled)
}

// ReplyData stores data under the current status code.
//
// A bare integer in [100, 599) is taken as a status code rather than a
// payload: the status changes and the previously compiled payload is kept.
// A schema.Lit holding such an integer is treated the same way. To store the
// number as data use Reply, or schema.Fragment(map[string]any{"const": n}).
// Other values, including 599 itself and non-integral numbers, are compiled as
// the payload.
func (r *Response) ReplyData(data any) (*Service, error) {
	if code, ok := statusLiteral(data); ok {
		return r.commit(code, r.data)
	}
	compiled, err := r.compile(data)
	if err != nil {
		return nil, err
	}
	return r.commit(r.statusCode, compiled)
}

// ReplyStatus changes only the status code, keeping the current payload.
func (r *Response) ReplyStatus(status int) (*Service, error) {
	if err := unmock.CheckStatusCode(status); err != nil {
		return nil, err
	}
	return r.commit(status, r.data)
}

func (r *Response) compile(data any) (schema.JSONSchema, error) {
	s := r.svc
	v, err := schema.From(data)
	if err != nil {
		s.opts.metrics.Compiled(err)
		return nil, fmt.Errorf("mock: %s %s: %w", r.method, r.endpoint, err)
	}
	compiled, err := schema.Compile(v)
	s.opts.metrics.Compiled(err)
	if err != nil {
		return nil, fmt.Errorf("mock: %s %s: %w", r.method, r.endpoint, err)
	}
	return compiled, nil
}

// commit upserts (status, data) and adopts them only once the store accepts.
func (r *Response) commit(status int, data schema.JSONSchema) (*Service, error) {
	s := r.svc
	def := unmock.EndpointDefinition{
		BaseURL:    s.baseURL,
		Method:     r.method,
		Endpoint:   r.endpoint,
		StatusCode: status,
		Response:   data,
		Name:       s.opts.name,
	}
	store, err := s.store.UpdateOrAdd(def)
	if err != nil {
		return nil, err
	}
	r.statusCode = status
	r.data = data
	s.opts.logger.Debug().
		Str("method", string(r.method)).
		Str("endpoint", r.endpoint).
		Int("status_code", r.statusCode).
		Msg("reply registered")
	return &Service{store: store, baseURL: s.baseURL, opts: s.opts}, nil
}

// statusLiteral reports whether data is a bare integer in [100, 599).
func statusLiteral(data any) (int, bool) {
	if l, ok := data.(schema.Literal); ok {
		data = l.Interface()
	}
	var n int64
	switch x := data.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case uintptr:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	default:
		return 0, false
	}
	if n >= unmock.MinStatusCode && n < unmock.MaxStatusCode {
		return int(n), true
	}
	return 0, false
}
