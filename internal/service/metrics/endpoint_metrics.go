package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "neofin",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of assistant endpoints, including collaborator calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neofin",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Failed requests by assistant endpoint and error code",
		},
		[]string{"endpoint", "code"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors)
	})
}

// Observe records the latency of one call to endpoint since start.
func Observe(endpoint string, start time.Time) {
	EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// Fail counts one failed call to endpoint.
func Fail(endpoint, code string) {
	EndpointErrors.WithLabelValues(endpoint, code).Inc()
}
