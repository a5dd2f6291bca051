// Package metrics exposes Prometheus instrumentation for the console.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_console_http_requests_total",
		Help: "Total number of HTTP requests served by the console",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interview_console_http_request_duration_seconds",
		Help:    "Duration of HTTP requests served by the console",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	backendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_console_backend_requests_total",
		Help: "Total number of calls made to the scheduling backend",
	}, []string{"method", "endpoint", "result"})

	backendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "interview_console_backend_request_duration_seconds",
		Help:    "Duration of calls made to the scheduling backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "result"})

	toastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_console_toasts_total",
		Help: "Notifications shown to the operator, by kind",
	}, []string{"kind"})

	toastsDismissed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_console_toasts_dismissed_total",
		Help: "Notifications dismissed by the operator or expired",
	})
)

// ObserveHTTPRequest records a console HTTP request
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveBackendCall records one call to the backend. result is the status
// code, or "error" when no response arrived.
func ObserveBackendCall(method, endpoint, result string, duration time.Duration) {
	backendRequestsTotal.WithLabelValues(method, endpoint, result).Inc()
	backendRequestDuration.WithLabelValues(method, endpoint, result).Observe(duration.Seconds())
}

// ObserveToast counts a notification of the given kind
func ObserveToast(kind string) {
	toastsTotal.WithLabelValues(kind).Inc()
}

// ObserveDismissal counts a notification leaving the display
func ObserveDismissal() {
	toastsDismissed.Inc()
}
