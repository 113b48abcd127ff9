package gapfill

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gapfill_gaps_total",
		Help: "Finalized gaps by outcome.",
	}, []string{"outcome"})

	scansOfferedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gapfill_scans_offered_total",
		Help: "Scans offered to gaps, summed over all gaps.",
	})

	gapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gapfill_gap_duration_seconds",
		Help:    "Time spent streaming one scan list through a gap.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~0.8s
	})
)
