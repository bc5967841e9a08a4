package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biographer_generation_runs_total",
			Help: "Total number of cartoon generation runs by outcome.",
		},
		[]string{"status"},
	)
	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "biographer_generation_duration_seconds",
			Help:    "Histogram of full generation run durations.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	panelsPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "biographer_panels_per_run",
			Help:    "Histogram of panel counts produced per completed run.",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		},
	)
)
