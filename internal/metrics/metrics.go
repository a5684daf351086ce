// Package metrics holds the Prometheus collectors for the moderation core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics are registered against a caller-supplied registry so tests can use
// their own.
type Metrics struct {
	SweepRuns        *prometheus.CounterVec
	SweepDuration    prometheus.Histogram
	ReportsProcessed *prometheus.CounterVec
	Violations       prometheus.Counter
	Bans             prometheus.Counter
	Recomputes       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runmate",
			Subsystem: "moderation",
			Name:      "sweep_runs_total",
			Help:      "Enforcement sweep invocations by result.",
		}, []string{"result"}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runmate",
			Subsystem: "moderation",
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of one enforcement sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runmate",
			Subsystem: "moderation",
			Name:      "reports_processed_total",
			Help:      "Overdue reports handled by the sweep, by outcome.",
		}, []string{"outcome"}),
		Violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runmate",
			Subsystem: "moderation",
			Name:      "violations_recorded_total",
			Help:      "Violations added to user accounts.",
		}),
		Bans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runmate",
			Subsystem: "moderation",
			Name:      "accounts_banned_total",
			Help:      "Accounts suspended by the escalation policy.",
		}),
		Recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runmate",
			Subsystem: "reputation",
			Name:      "recomputes_total",
			Help:      "Manner distance recomputations by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.SweepRuns, m.SweepDuration, m.ReportsProcessed, m.Violations, m.Bans, m.Recomputes)
	}
	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics {
	return New(nil)
}
