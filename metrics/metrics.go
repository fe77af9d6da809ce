// Package metrics provides Prometheus metrics for mock services.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "unmock"

// Collector holds all Prometheus metrics. A nil *Collector is valid and
// records nothing, so components can take one as an optional dependency.
type Collector struct {
	// Builder metrics
	EndpointUpserts *prometheus.CounterVec
	Compilations    *prometheus.CounterVec

	// Store metrics
	StoredEndpoints prometheus.Gauge

	// Fingerprint metrics
	Fingerprints *prometheus.CounterVec

	// Snapshot metrics
	Snapshots *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		EndpointUpserts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "endpoint_upserts_total",
				Help:      "Total number of endpoint definitions written to a service store",
			},
			[]string{"method", "status_code"},
		),
		Compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_compilations_total",
				Help:      "Total number of response schema compilations",
			},
			[]string{"result"},
		),
		StoredEndpoints: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stored_endpoints",
				Help:      "Number of endpoint definitions currently held by the store",
			},
		),
		Fingerprints: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fingerprints_total",
				Help:      "Total number of request fingerprints computed",
			},
			[]string{"result"},
		),
		Snapshots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_total",
				Help:      "Total number of snapshot recorder operations",
			},
			[]string{"op"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// Upsert records one endpoint definition write.
func (c *Collector) Upsert(method string, statusCode int) {
	if c == nil {
		return
	}
	c.EndpointUpserts.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// Compiled records a schema compilation outcome.
func (c *Collector) Compiled(err error) {
	if c == nil {
		return
	}
	c.Compilations.WithLabelValues(result(err)).Inc()
}

// Stored sets the current number of stored endpoint definitions.
func (c *Collector) Stored(n int) {
	if c == nil {
		return
	}
	c.StoredEndpoints.Set(float64(n))
}

// Fingerprinted records a fingerprint computation outcome.
func (c *Collector) Fingerprinted(err error) {
	if c == nil {
		return
	}
	c.Fingerprints.WithLabelValues(result(err)).Inc()
}

// Snapshot records a recorder operation ("notify", "update", "reset").
func (c *Collector) Snapshot(op string) {
	if c == nil {
		return
	}
	c.Snapshots.WithLabelValues(op).Inc()
}

// Reloaded records a config reload attempt at unix time ts.
func (c *Collector) Reloaded(err error, ts int64) {
	if c == nil {
		return
	}
	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}
	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(ts))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
