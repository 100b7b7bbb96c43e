package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls made to the commerce backend and the payment provider.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream call metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of upstream API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_success",
		Help: "Successful upstream API calls.",
	}, []string{"service", "operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_failure",
		Help: "Failed upstream API calls.",
	}, []string{"service", "operation", "status"})
	reg.MustRegister(duration, success, failure)
	return &UpstreamMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// Observe records one finished call. status is the HTTP status, or 0 when
// the request never produced a response.
func (u *UpstreamMetrics) Observe(service, operation string, status int, elapsed time.Duration, err error) {
	if u == nil || u.duration == nil {
		return
	}
	service = normalizeLabel(service)
	operation = normalizeLabel(operation)
	u.duration.WithLabelValues(service, operation).Observe(elapsed.Seconds())
	if err != nil {
		u.failure.WithLabelValues(service, operation, statusLabel(status)).Inc()
		return
	}
	u.success.WithLabelValues(service, operation).Inc()
}

func statusLabel(status int) string {
	switch {
	case status <= 0:
		return "transport"
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "other"
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
