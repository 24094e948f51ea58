package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unroutedPath labels requests chi never matched, so raw URLs such as
// /brands/12345 cannot blow up label cardinality.
const unroutedPath = "unmatched"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brands",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Requests served by the local function server.",
	}, []string{"function", "method", "route", "code"})

	requestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "brands",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time to serve a request, by route.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"function", "route", "code"})

	responseBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "brands",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "Response body size; brand pages grow with limit.",
		Buckets:   prometheus.ExponentialBuckets(128, 4, 7),
	}, []string{"function", "route"})

	requestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "brands",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Requests currently being served.",
	}, []string{"function"})
)

// PrometheusMetrics records request count, latency and response size per chi
// route pattern, labelled with the function the server hosts.
func PrometheusMetrics(functionName string) func(next http.Handler) http.Handler {
	inFlight := requestsInFlight.WithLabelValues(functionName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inFlight.Inc()
			defer inFlight.Dec()

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := unroutedPath
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			code := strconv.Itoa(rec.statusCode)

			requestsTotal.WithLabelValues(functionName, r.Method, route, code).Inc()
			requestSeconds.WithLabelValues(functionName, route, code).Observe(time.Since(start).Seconds())
			responseBytes.WithLabelValues(functionName, route).Observe(float64(rec.bytes))
		})
	}
}
