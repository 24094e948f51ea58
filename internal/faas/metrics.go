package faas

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faas_invocations_total",
			Help: "Total number of function invocations",
		},
		[]string{"function", "code"},
	)

	invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "faas_invocation_duration_seconds",
			Help:    "Function invocation duration in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"function"},
	)
)

func observe(function string, code int, d time.Duration) {
	invocationsTotal.WithLabelValues(function, statusLabel(code)).Inc()
	invocationDuration.WithLabelValues(function).Observe(d.Seconds())
}
