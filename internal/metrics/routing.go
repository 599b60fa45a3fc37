package metrics

import "github.com/prometheus/client_golang/prometheus"

// Routing Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "search_requests_total",
			Help:      "Total number of provider search attempts",
		},
		[]string{"provider", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "omnisearch",
			Name:      "search_request_duration_seconds",
			Help:      "Provider search call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	PaidFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "paid_fallback_total",
			Help:      "Routed calls served by the paid fallback tier",
		},
		[]string{"provider"},
	)

	RoutingExhaustedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "routing_exhausted_total",
			Help:      "Routed calls where every candidate including the paid fallback failed",
		},
	)

	CircuitSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "omnisearch",
			Name:      "circuit_skips_total",
			Help:      "Provider candidates skipped because their circuit was open",
		},
		[]string{"provider"},
	)
)

var routingMetricsRegistered bool

// RegisterRoutingMetrics registers Prometheus routing metrics. Must be called once from main.
func RegisterRoutingMetrics() {
	if routingMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(PaidFallbackTotal)
	prometheus.MustRegister(RoutingExhaustedTotal)
	prometheus.MustRegister(CircuitSkipsTotal)
	routingMetricsRegistered = true
}
