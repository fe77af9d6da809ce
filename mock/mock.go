// Package mock is a fluent builder for mocked HTTP services.
//
//	svc := mock.New(store, "https://api.example.com")
//	svc, err := svc.Post("/users").ReplyData(schema.Object{"id": schema.Integer()})
//	if err != nil {
//	    return err
//	}
//	svc, err = svc.Post("/users").Reply(409, schema.Object{"error": schema.String()})
//
// Every reply compiles its payload, normalizes the endpoint to start with "/",
// and upserts an EndpointDefinition into the store. The returned Service is
// bound to the store the upsert returned.
package mock

import (
	"github.com/rs/zerolog"

	"github.com/unmock/unmock-go"
	"github.com/unmock/unmock-go/metrics"
	"github.com/unmock/unmock-go/schema"
)

type options struct {
	name    string
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// Option configures a Service.
type Option func(*options)

// WithName sets the service name stored on every definition.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger for reply events. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records schema compilations on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// Service exposes one builder per HTTP verb for a single base URL.
type Service struct {
	store   unmock.ServiceStore
	baseURL string
	opts    options
}

// New returns a Service that writes into store.
func New(store unmock.ServiceStore, baseURL string, opts ...Option) *Service {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.logger = o.logger.With().Str("base_url", baseURL).Logger()
	if o.name != "" {
		o.logger = o.logger.With().Str("service", o.name).Logger()
	}
	return &Service{store: store, baseURL: baseURL, opts: o}
}

// Store returns the store subsequent replies write into.
func (s *Service) Store() unmock.ServiceStore { return s.store }

// BaseURL returns the base URL every definition is registered under.
func (s *Service) BaseURL() string { return s.baseURL }

// Name returns the service name, if any.
func (s *Service) Name() string { return s.opts.name }

func (s *Service) Get(endpoint string) *Response     { return s.Method(unmock.MethodGet, endpoint) }
func (s *Service) Head(endpoint string) *Response    { return s.Method(unmock.MethodHead, endpoint) }
func (s *Service) Post(endpoint string) *Response    { return s.Method(unmock.MethodPost, endpoint) }
func (s *Service) Put(endpoint string) *Response     { return s.Method(unmock.MethodPut, endpoint) }
func (s *Service) Patch(endpoint string) *Response   { return s.Method(unmock.MethodPatch, endpoint) }
func (s *Service) Delete(endpoint string) *Response  { return s.Method(unmock.MethodDelete, endpoint) }
func (s *Service) Options(endpoint string) *Response { return s.Method(unmock.MethodOptions, endpoint) }
func (s *Service) Trace(endpoint string) *Response   { return s.Method(unmock.MethodTrace, endpoint) }

// Method returns a response builder for m and endpoint, starting at the
// verb's default status code and an empty response schema.
func (s *Service) Method(m unmock.HTTPMethod, endpoint string) *Response {
	return &Response{
		svc:        s,
		method:     m,
		endpoint:   unmock.NormalizeEndpoint(endpoint),
		statusCode: m.DefaultStatus(),
		data:       schema.JSONSchema{},
	}
}
