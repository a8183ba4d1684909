package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests gin could not route, keeping cardinality bounded
const unmatchedRoute = "unmatched"

// HTTPDurationBuckets are latency buckets in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HTTPMetrics holds the request collectors and the form submission counter
type HTTPMetrics struct {
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	formSubmissions *prometheus.CounterVec
}

// NewHTTPMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: HTTPDurationBuckets,
		}, []string{"method", "route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served",
		}),
		formSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contactdesk_form_submissions_total",
			Help: "Public form submissions by form and outcome",
		}, []string{"form", "outcome"}),
	}
}

// Middleware records every request
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordSubmission counts a form submission. outcome is one of
// "accepted", "rejected" or "failed".
func (m *HTTPMetrics) RecordSubmission(form, outcome string) {
	m.formSubmissions.WithLabelValues(form, outcome).Inc()
}

// SubmissionRecorder is what handlers need to count form submissions
type SubmissionRecorder interface {
	RecordSubmission(form, outcome string)
}

// NopRecorder discards submissions
type NopRecorder struct{}

// RecordSubmission does nothing
func (NopRecorder) RecordSubmission(string, string) {}
