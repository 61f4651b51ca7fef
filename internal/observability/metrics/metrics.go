// Package metrics exposes Prometheus counters for the audit trail and session sweeps.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's Prometheus collectors.
type Metrics struct {
	AuditEntries      *prometheus.CounterVec
	AuditSinkFailures prometheus.Counter
	SessionsSwept     prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the console collectors on reg. A nil reg gets a private
// registry so repeated construction in tests cannot collide.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		AuditEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mesh_console_audit_entries_total",
			Help: "Total number of audit entries recorded, by action",
		}, []string{"action"}),
		AuditSinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesh_console_audit_sink_failures_total",
			Help: "Total number of audit entries the durable sink failed to mirror",
		}),
		SessionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "mesh_console_sessions_swept_total",
			Help: "Total number of expired sessions cleared by the sweeper",
		}),
		gatherer: reg,
	}
}

// IncAuditEntry counts one recorded audit entry.
func (m *Metrics) IncAuditEntry(action string) {
	m.AuditEntries.WithLabelValues(action).Inc()
}

// IncAuditSinkFailure counts one failed mirror write.
func (m *Metrics) IncAuditSinkFailure() {
	m.AuditSinkFailures.Inc()
}

// AddSessionsSwept adds n cleared sessions.
func (m *Metrics) AddSessionsSwept(n int) {
	if n > 0 {
		m.SessionsSwept.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
