package location

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchTotal counts place searches by outcome
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zip_place_search_total",
		Help: "Total place searches by outcome",
	}, []string{"result"}) // "ok", "no_results", "error", "cancelled"

	searchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zip_place_search_cache_hits_total",
		Help: "Place searches answered from the result cache",
	})

	searchUpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zip_place_search_upstream_duration_seconds",
		Help:    "Latency of calls to the place search provider",
		Buckets: prometheus.DefBuckets,
	})
)
