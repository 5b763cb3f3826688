package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes
const (
	OutcomeAccepted           = "accepted"
	OutcomeFieldViolations    = "field_violations"
	OutcomeEmpty              = "empty"
	OutcomeQuantityViolations = "quantity_violations"
	OutcomeError              = "error"
)

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	submissions  *prometheus.CounterVec
	orderLines   prometheus.Histogram
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fast_order",
			Name:      "submissions_total",
			Help:      "Fast order submissions by outcome.",
		}, []string{"outcome"}),
		orderLines: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fast_order",
			Name:      "merged_lines",
			Help:      "Distinct products per merged fast order.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fast_order",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fast_order",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveSubmission records the outcome of one submission
func (m *Metrics) ObserveSubmission(outcome string, mergedLines int) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	if mergedLines > 0 {
		m.orderLines.Observe(float64(mergedLines))
	}
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
