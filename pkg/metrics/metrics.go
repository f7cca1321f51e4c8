package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorTotal      *prometheus.CounterVec

	// Reminder batch metrics
	RemindersSent   prometheus.Counter
	RemindersFailed prometheus.Counter
	ReminderRuns    prometheus.Counter

	// Outbox metrics
	OutboxEventsProcessed prometheus.Counter
	OutboxEventsFailed    prometheus.Counter
	OutboxRetries         *prometheus.CounterVec
	OutboxLatency         prometheus.Histogram

	// Visit workflow metrics
	VisitTransitions *prometheus.CounterVec
}

// New creates and registers all application metrics under a namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ErrorTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total HTTP error responses",
		}, []string{"method", "path", "status"}),

		RemindersSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Appointment reminders sent",
		}),
		RemindersFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Appointment reminders that failed per item",
		}),
		ReminderRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_runs_total",
			Help:      "Reminder batch runs",
		}),

		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_retries_total",
			Help:      "Outbox publish retries",
		}, []string{"event_type"}),
		OutboxLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		VisitTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visit_transitions_total",
			Help:      "Visit status transitions by from/to stage",
		}, []string{"from", "to"}),
	}
}
