package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks task-level outcomes for the background workers.
type Metrics struct {
	RecountsTotal   *prometheus.CounterVec
	RecountDuration prometheus.Histogram
	StatsComputed   *prometheus.CounterVec
}

// NewMetrics registers the worker metrics on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		RecountsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "seoscan_keyword_recounts_total",
			Help: "Keyword recount tasks processed, by status.",
		}, []string{"status"}),
		RecountDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "seoscan_keyword_recount_duration_seconds",
			Help:    "Duration of keyword recount tasks.",
			Buckets: prometheus.DefBuckets,
		}),
		StatsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "seoscan_stats_recomputes_total",
			Help: "Focus keyphrase stats recomputes, by status.",
		}, []string{"status"}),
	}
}
