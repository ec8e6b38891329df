package paging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts pipeline runs by strategy and outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethos_paging_runs_total",
			Help: "Total number of paging runs by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // "complete", "failed", "shortcut"
	)

	// PagesFetched counts page fetches issued by the fetch loop and discovery.
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethos_paging_pages_fetched_total",
			Help: "Total number of pages fetched by strategy",
		},
		[]string{"strategy"},
	)

	// RunDuration tracks end-to-end pipeline duration.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ethos_paging_run_duration_seconds",
			Help:    "Paging run duration in seconds by strategy",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"strategy"},
	)
)
