package contract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	compilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storycare_contract_compiles_total",
			Help: "Total number of contract compilations, partitioned by outcome.",
		},
		[]string{"status"}, // ok / failed_validation / error
	)
	compileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storycare_contract_compile_duration_seconds",
			Help:    "Histogram of contract compilation durations.",
			Buckets: prometheus.DefBuckets,
		},
	)
)
