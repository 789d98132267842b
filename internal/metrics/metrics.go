package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energy_estimator_upstream_calls_total",
			Help: "Total calls to external geocoding and weather APIs",
		},
		[]string{"upstream", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "energy_estimator_upstream_latency_seconds",
			Help:    "External API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	EstimatesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energy_estimator_estimates_total",
			Help: "Total estimates computed, by endpoint",
		},
		[]string{"endpoint"},
	)

	ProbeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "energy_estimator_probe_failures_total",
			Help: "Total failed upstream health probes",
		},
		[]string{"upstream"},
	)
)
