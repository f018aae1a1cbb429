// Package telemetry exposes Prometheus collectors for the screenshot service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	screenshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenshot_renders_total",
			Help: "Total number of screenshot renders, labeled by country and outcome.",
		},
		[]string{"country", "outcome"},
	)

	renderDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screenshot_render_duration_seconds",
			Help:    "Histogram of end-to-end render latencies, labeled by outcome.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"outcome"},
	)

	activeRenders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "screenshot_active_renders",
			Help: "Number of renders currently holding a browser context.",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30, 60},
		},
		[]string{"method", "route"},
	)
)

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRender records one finished render attempt.
func ObserveRender(country string, outcome string, duration time.Duration) {
	screenshotsTotal.WithLabelValues(country, outcome).Inc()
	renderDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncActiveRenders increments the in-flight render gauge.
func IncActiveRenders() {
	activeRenders.Inc()
}

// DecActiveRenders decrements the in-flight render gauge.
func DecActiveRenders() {
	activeRenders.Dec()
}

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
