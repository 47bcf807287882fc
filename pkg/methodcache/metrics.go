package methodcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks durable cache hits.
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footystats_methodcache_hits_total",
			Help: "Total number of durable method cache hits",
		},
	)

	// cacheMisses tracks durable cache misses, including decode failures
	// and expired rows.
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footystats_methodcache_misses_total",
			Help: "Total number of durable method cache misses",
		},
	)

	// decodeFailures tracks rows that could not be decoded. Each one also
	// counts as a miss.
	decodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footystats_methodcache_decode_failures_total",
			Help: "Total number of durable method cache rows that failed to decode",
		},
	)

	// sweepDeletions tracks rows removed by the cleanup sweep.
	sweepDeletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footystats_methodcache_sweep_deletions_total",
			Help: "Total number of durable method cache rows deleted by the sweep",
		},
	)

	// cacheErrors tracks cache operation errors.
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footystats_methodcache_errors_total",
			Help: "Total number of durable method cache operation errors",
		},
		[]string{"operation"}, // "get", "set"
	)
)
