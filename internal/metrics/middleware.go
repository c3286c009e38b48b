package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests no route matched, so scanners cannot blow up cardinality.
const unmatchedRoute = "unmatched"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pathwise",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			// AI generation and video pass-through run for tens of seconds.
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "route", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpResponseBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "http_response_bytes_total",
			Help:      "Bytes written to clients, dominated by the PDF and video proxies",
		},
		[]string{"route"},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pathwise",
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served",
		},
	)
)

// Middleware records HTTP request duration, count and response size per chi route.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := routeLabel(r)
			status := strconv.Itoa(ww.status)

			httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			if ww.bytes > 0 {
				httpResponseBytes.WithLabelValues(route).Add(float64(ww.bytes))
			}
		})
	}
}

// routeLabel returns the matched chi pattern, e.g. /api/scholarships/{id}.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	return normalizePath(rctx.RoutePattern())
}

func normalizePath(pattern string) string {
	if pattern == "" {
		return unmatchedRoute
	}
	return pattern
}

// statusWriter captures the response status code and body size.
type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err //nolint:wrapcheck // delegating to underlying ResponseWriter
}

// Unwrap exposes the underlying writer to http.ResponseController (flushing proxied streams).
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
