// Package metrics exposes the mirror's Prometheus instrumentation. Every
// collector is constructed against a caller-supplied prometheus.Registerer
// rather than the global promauto default registry, so a CLI driver or
// embedding program controls exactly what gets exposed and on what
// /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the mirror's collectors. The zero value is not useful;
// construct with New.
type Metrics struct {
	ObjectsRegistered   prometheus.Counter
	ConnectionsIngested prometheus.Counter
	ConnectionEntries   prometheus.Counter
	StaleObjects        prometheus.Gauge
	StaleConnections    prometheus.Gauge
	BootstrapOutcomes   *prometheus.CounterVec
}

// New creates and registers the mirror's collectors against reg. reg may
// be a fresh prometheus.NewRegistry() or prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ObjectsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphmirror_objects_registered_total",
			Help: "Total number of objects newly registered (no-op re-registrations are not counted).",
		}),
		ConnectionsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphmirror_connections_ingested_total",
			Help: "Total number of updateConnection calls that completed successfully.",
		}),
		ConnectionEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "graphmirror_connection_entries_total",
			Help: "Total number of connection_entries rows appended.",
		}),
		StaleObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphmirror_stale_objects",
			Help: "Number of objects findOutdated reported as stale on its most recent call.",
		}),
		StaleConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graphmirror_stale_connections",
			Help: "Number of connections findOutdated reported as stale on its most recent call.",
		}),
		BootstrapOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphmirror_bootstrap_total",
			Help: "Bootstrap calls by outcome (noop, init, incompatible).",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.ObjectsRegistered,
		m.ConnectionsIngested,
		m.ConnectionEntries,
		m.StaleObjects,
		m.StaleConnections,
		m.BootstrapOutcomes,
	)
	return m
}
