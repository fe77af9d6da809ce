// Package service provides an in-memory ServiceStore.
package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/unmock/unmock-go"
	"github.com/unmock/unmock-go/metrics"
)

// Store holds endpoint definitions keyed by (baseUrl, method, endpoint,
// statusCode). It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	defs map[unmock.EndpointKey]unmock.EndpointDefinition

	logger   zerolog.Logger
	metrics  *metrics.Collector
	validate []unmock.ValidateOption
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for upsert events. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l.With().Str("component", "service_store").Logger() }
}

// WithMetrics records upserts and the stored definition count on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Store) { s.metrics = c }
}

// WithValidateOptions adds options applied when validating incoming definitions.
func WithValidateOptions(opts ...unmock.ValidateOption) Option {
	return func(s *Store) { s.validate = append(s.validate, opts...) }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		defs:   map[unmock.EndpointKey]unmock.EndpointDefinition{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// UpdateOrAdd validates def and stores it, replacing any definition with the
// same key. It returns s.
func (s *Store) UpdateOrAdd(def unmock.EndpointDefinition) (unmock.ServiceStore, error) {
	if err := def.Validate(s.validate...); err != nil {
		return s, fmt.Errorf("service: %w", err)
	}
	key := def.Key()

	s.mu.Lock()
	_, replaced := s.defs[key]
	s.defs[key] = def
	n := len(s.defs)
	s.mu.Unlock()

	s.logger.Debug().
		Str("key", key.String()).
		Str("name", def.Name).
		Bool("replaced", replaced).
		Msg("endpoint definition stored")
	s.metrics.Upsert(string(def.Method), def.StatusCode)
	s.metrics.Stored(n)
	return s, nil
}

// Get returns the definition stored under key.
func (s *Store) Get(key unmock.EndpointKey) (unmock.EndpointDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[key]
	return def, ok
}

// List returns every definition ordered by base URL, endpoint, method and status code.
func (s *Store) List() []unmock.EndpointDefinition {
	s.mu.RLock()
	keys := make([]unmock.EndpointKey, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	out := make([]unmock.EndpointDefinition, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.defs[k])
	}
	s.mu.RUnlock()
	return out
}

// Match returns the definitions for baseURL, method and endpoint across all
// status codes, lowest status first.
func (s *Store) Match(baseURL string, method unmock.HTTPMethod, endpoint string) []unmock.EndpointDefinition {
	endpoint = unmock.NormalizeEndpoint(endpoint)
	var out []unmock.EndpointDefinition
	for _, def := range s.List() {
		if def.BaseURL == baseURL && def.Method == method && def.Endpoint == endpoint {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of stored definitions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.defs)
}

// Services returns the distinct non-empty service names, sorted.
func (s *Store) Services() []string {
	s.mu.RLock()
	seen := map[string]struct{}{}
	for _, def := range s.defs {
		if def.Name != "" {
			seen[def.Name] = struct{}{}
		}
	}
	s.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Reset drops every stored definition.
func (s *Store) Reset() {
	s.mu.Lock()
	s.defs = map[unmock.EndpointKey]unmock.EndpointDefinition{}
	s.mu.Unlock()

	s.logger.Debug().Msg("service store reset")
	s.metrics.Stored(0)
}

func compareKeys(a, b unmock.EndpointKey) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}
