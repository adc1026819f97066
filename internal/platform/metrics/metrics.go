package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-safe so wiring stays optional in tests.
type Metrics struct {
	UnitsCommitted  prometheus.Counter
	UnitsRolledBack prometheus.Counter
	CommitConflicts prometheus.Counter
	CommitSeconds   prometheus.Histogram
	AuditPublished  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UnitsCommitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_uow_commits_total",
			Help: "Total number of units of work committed",
		}),
		UnitsRolledBack: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_uow_rollbacks_total",
			Help: "Total number of units of work rolled back",
		}),
		CommitConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_uow_conflicts_total",
			Help: "Total number of commits rejected by optimistic concurrency",
		}),
		CommitSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_uow_commit_seconds",
			Help:    "Commit latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		AuditPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_audit_published_total",
			Help: "Total number of audit events published from the outbox",
		}),
	}
}

func (m *Metrics) IncCommitted() {
	if m != nil {
		m.UnitsCommitted.Inc()
	}
}

func (m *Metrics) IncRolledBack() {
	if m != nil {
		m.UnitsRolledBack.Inc()
	}
}

func (m *Metrics) IncConflict() {
	if m != nil {
		m.CommitConflicts.Inc()
	}
}

func (m *Metrics) ObserveCommit(seconds float64) {
	if m != nil {
		m.CommitSeconds.Observe(seconds)
	}
}

func (m *Metrics) IncAuditPublished() {
	if m != nil {
		m.AuditPublished.Inc()
	}
}
