package ttlcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks hits by namespace (prediction, performance).
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footystats_ttlcache_hits_total",
			Help: "Total number of in-memory cache hits",
		},
		[]string{"namespace"},
	)

	// cacheMisses tracks misses by namespace.
	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footystats_ttlcache_misses_total",
			Help: "Total number of in-memory cache misses",
		},
		[]string{"namespace"},
	)

	// cacheEvictions tracks removed entries by namespace and mechanism
	// (lazy eviction on read vs. background sweep).
	cacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footystats_ttlcache_evictions_total",
			Help: "Total number of in-memory cache entries evicted",
		},
		[]string{"namespace", "mechanism"},
	)
)
