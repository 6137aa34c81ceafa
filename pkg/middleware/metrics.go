package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unroutedPath labels requests that matched no route, so probing for random
// URLs cannot grow the series count.
const unroutedPath = "unknown"

var requestLabels = []string{"service", "method", "path", "status"}

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by route and status.",
	}, requestLabels)

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency, by route and status.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, requestLabels)

	httpRequestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	}, []string{"service"})
)

// PrometheusMetrics records count, latency and concurrency per route. The
// path label is the chi pattern, so /images/{key} is one series however many
// images are fetched.
func PrometheusMetrics(serviceName string) func(next http.Handler) http.Handler {
	inFlight := httpRequestsInFlight.WithLabelValues(serviceName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inFlight.Inc()
			start := time.Now()
			sw := newStatusWriter(w)
			defer func() {
				inFlight.Dec()
				labels := prometheus.Labels{
					"service": serviceName,
					"method":  r.Method,
					"path":    routePattern(r, unroutedPath),
					"status":  strconv.Itoa(sw.statusCode),
				}
				httpRequestsTotal.With(labels).Inc()
				httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
