package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the reminder dispatcher.
type Metrics struct {
	// RunsTotal counts dispatch runs per trigger.
	RunsTotal *prometheus.CounterVec

	// RunDuration is the wall-clock duration of a full dispatch run.
	RunDuration prometheus.Histogram

	// UsersScannedTotal counts users examined across all runs.
	UsersScannedTotal prometheus.Counter

	// NotificationsTotal counts send attempts by channel and outcome.
	NotificationsTotal *prometheus.CounterVec

	// StatusesMarkedTotal counts not-responded markers written.
	StatusesMarkedTotal prometheus.Counter

	// AuditRowsWrittenTotal counts audit rows persisted.
	AuditRowsWrittenTotal prometheus.Counter
}

// New creates and registers dispatcher metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of dispatch runs",
			},
			[]string{"trigger"},
		),

		RunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of a dispatch run",
				Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300},
			},
		),

		UsersScannedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "users_scanned_total",
				Help:      "Total number of users examined",
			},
		),

		NotificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Send attempts by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),

		StatusesMarkedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statuses_marked_total",
				Help:      "Total number of not_responded markers written",
			},
		),

		AuditRowsWrittenTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_rows_written_total",
				Help:      "Total number of audit rows persisted",
			},
		),
	}
}

// IncNotification increments the send counter for a channel and outcome.
func (m *Metrics) IncNotification(channel, outcome string) {
	m.NotificationsTotal.WithLabelValues(channel, outcome).Inc()
}

// ObserveRun records one completed run for a trigger.
func (m *Metrics) ObserveRun(trigger string, seconds float64) {
	m.RunsTotal.WithLabelValues(trigger).Inc()
	m.RunDuration.Observe(seconds)
}
