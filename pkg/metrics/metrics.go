package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the HTTP and business counters the service exposes.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	sosRecordsTotal *prometheus.CounterVec
	sosRetriesTotal prometheus.Counter
	queuePending    prometheus.Gauge

	paymentsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		sosRecordsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sos_records_total",
				Help: "SOS records by lifecycle transition",
			},
			[]string{"transition"}, // queued | synced | failed
		),
		sosRetriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sos_retries_total",
				Help: "SOS sync retry attempts",
			},
		),
		queuePending: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sos_queue_pending",
				Help: "Records currently pending in the local queue",
			},
		),
		paymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_total",
				Help: "Payment operations by kind and outcome",
			},
			[]string{"kind", "outcome"}, // kind: create|verify|webhook|confirm
		),
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) SOSTransition(transition string) {
	m.sosRecordsTotal.WithLabelValues(transition).Inc()
}

func (m *Metrics) SOSRetry() { m.sosRetriesTotal.Inc() }

func (m *Metrics) SetQueuePending(n float64) { m.queuePending.Set(n) }

func (m *Metrics) Payment(kind, outcome string) {
	m.paymentsTotal.WithLabelValues(kind, outcome).Inc()
}
