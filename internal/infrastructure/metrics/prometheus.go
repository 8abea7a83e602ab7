package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusTelemetry implements the Telemetry port with prometheus
// collectors. It owns its registry; nothing registers globally.
type PrometheusTelemetry struct {
	registry *prometheus.Registry

	recordsStarted   *prometheus.CounterVec
	recordsCompleted *prometheus.CounterVec
	recordsFailed    *prometheus.CounterVec
	recordsRetried   *prometheus.CounterVec
	activeRecords    prometheus.Gauge
	completionTime   *prometheus.HistogramVec
	notifications    *prometheus.CounterVec
}

// NewPrometheusTelemetry creates the collectors on a fresh registry
func NewPrometheusTelemetry() *PrometheusTelemetry {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusTelemetry{
		registry: registry,
		recordsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valley_records_started_total",
			Help: "Lifecycle records created, by kind",
		}, []string{"kind"}),
		recordsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valley_records_completed_total",
			Help: "Lifecycle records completed, by kind",
		}, []string{"kind"}),
		recordsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valley_records_failed_total",
			Help: "Lifecycle records failed, by kind and failure reason",
		}, []string{"kind", "reason"}),
		recordsRetried: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valley_records_retried_total",
			Help: "Explicit retries of failed records, by kind",
		}, []string{"kind"}),
		activeRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "valley_active_records",
			Help: "Records currently in the active working set",
		}),
		completionTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "valley_record_completion_seconds",
			Help:    "Wall time from submission to completion, by kind",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"kind"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valley_notifications_total",
			Help: "Player notifications pushed, by level",
		}, []string{"level"}),
	}
}

// Handler serves the registry for the /metrics route
func (t *PrometheusTelemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// RecordStarted counts a new lifecycle record of a kind
func (t *PrometheusTelemetry) RecordStarted(kind string) {
	t.recordsStarted.WithLabelValues(kind).Inc()
}

// RecordCompleted counts a completion and observes its wall time
func (t *PrometheusTelemetry) RecordCompleted(kind string, duration time.Duration) {
	t.recordsCompleted.WithLabelValues(kind).Inc()
	t.completionTime.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordFailed counts a failure with its short classification
func (t *PrometheusTelemetry) RecordFailed(kind string, reason string) {
	t.recordsFailed.WithLabelValues(kind, reason).Inc()
}

// RecordRetried counts an explicit retry
func (t *PrometheusTelemetry) RecordRetried(kind string) {
	t.recordsRetried.WithLabelValues(kind).Inc()
}

// SetActiveRecords gauges the current working set size
func (t *PrometheusTelemetry) SetActiveRecords(count int) {
	t.activeRecords.Set(float64(count))
}

// NotificationPushed counts an emitted player notification
func (t *PrometheusTelemetry) NotificationPushed(level string) {
	t.notifications.WithLabelValues(level).Inc()
}
