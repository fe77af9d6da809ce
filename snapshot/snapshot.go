// Package snapshot records request/response pairs keyed by request
// fingerprint. A Recorder is created and owned by the caller and handed to
// whatever needs snapshot capability; there is no process-wide instance.
package snapshot

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unmock/unmock-go/fingerprint"
	"github.com/unmock/unmock-go/metrics"
)

// Input is what a caller reports for one intercepted exchange.
type Input struct {
	TestName string
	Request  fingerprint.Request
	Response any
}

// Entry is one recorded exchange.
type Entry struct {
	ID          string              `json:"id"`
	Fingerprint string              `json:"fingerprint"`
	TestName    string              `json:"testName,omitempty"`
	Request     fingerprint.Request `json:"request"`
	Response    any                 `json:"response,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

// Snapshotter is the collaborator interface components depend on.
type Snapshotter interface {
	Notify(in Input) (Entry, error)
	Read() []Entry
	Lookup(fp string) (Entry, bool)
	Update(opts ...Option) error
	Reset()
}

type settings struct {
	ignore   fingerprint.Rules
	testName string
	logger   zerolog.Logger
	metrics  *metrics.Collector
	now      func() time.Time
}

// Option configures a Recorder.
type Option func(*settings)

// WithIgnore sets the ignore rules used to fingerprint requests.
func WithIgnore(rules ...fingerprint.Ignore) Option {
	return func(s *settings) { s.ignore = slices.Clone(rules) }
}

// WithTestName sets the test name used when an Input carries none.
func WithTestName(name string) Option {
	return func(s *settings) { s.testName = name }
}

// WithLogger sets the logger. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l.With().Str("component", "snapshot").Logger() }
}

// WithMetrics records recorder operations and fingerprints on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *settings) { s.metrics = c }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// Recorder is an in-memory Snapshotter. It is safe for concurrent use.
type Recorder struct {
	mu      sync.RWMutex
	cfg     settings
	hasher  *fingerprint.Hasher
	entries []Entry
	latest  map[string]int
}

var _ Snapshotter = (*Recorder)(nil)

// New creates a Recorder. It fails when the ignore rules do not compile.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{latest: map[string]int{}}
	if err := r.configure(defaults(), opts); err != nil {
		return nil, err
	}
	return r, nil
}

func defaults() settings {
	return settings{logger: zerolog.Nop(), now: time.Now}
}

func (r *Recorder) configure(base settings, opts []Option) error {
	cfg := base
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	h, err := fingerprint.Compile(cfg.ignore...)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	r.cfg = cfg
	r.hasher = h
	return nil
}

// Notify fingerprints in.Request and records the exchange.
func (r *Recorder) Notify(in Input) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fp, err := r.hasher.Sum(in.Request)
	r.cfg.metrics.Fingerprinted(err)
	if err != nil {
		return Entry{}, fmt.Errorf("snapshot: %w", err)
	}
	name := in.TestName
	if name == "" {
		name = r.cfg.testName
	}
	e := Entry{
		ID:          uuid.New().String(),
		Fingerprint: fp,
		TestName:    name,
		Request:     in.Request,
		Response:    in.Response,
		Timestamp:   r.cfg.now().UTC(),
	}
	r.entries = append(r.entries, e)
	r.latest[fp] = len(r.entries) - 1

	r.cfg.logger.Debug().
		Str("id", e.ID).
		Str("fingerprint", fp).
		Str("test", name).
		Msg("snapshot recorded")
	r.cfg.metrics.Snapshot("notify")
	return e, nil
}

// Read returns every entry in recording order.
func (r *Recorder) Read() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

// Lookup returns the most recent entry recorded under fp.
func (r *Recorder) Lookup(fp string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.latest[fp]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// Fingerprint computes the fingerprint req would be recorded under.
func (r *Recorder) Fingerprint(req fingerprint.Request) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasher.Sum(req)
}

// Update applies opts on top of the current settings. Recorded entries are
// kept as they are; only later notifications see the new settings. On error
// the previous settings stay in effect.
func (r *Recorder) Update(opts ...Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.configure(r.cfg, opts); err != nil {
		return err
	}
	r.cfg.logger.Debug().Int("ignore_rules", len(r.cfg.ignore)).Msg("snapshot settings updated")
	r.cfg.metrics.Snapshot("update")
	return nil
}

// Reset drops every recorded entry.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.latest = map[string]int{}
	r.cfg.logger.Debug().Msg("snapshots reset")
	r.cfg.metrics.Snapshot("reset")
}
