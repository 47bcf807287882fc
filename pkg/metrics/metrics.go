// Package metrics provides the centralized Prometheus registry reference
// for footystats. Metrics are defined in their respective packages
// (footballdata, ratelimit, ttlcache, methodcache) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by footystats.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Budget Metrics (pkg/ratelimit):
//   - footballdata_requests_available (Gauge): Requests remaining in the upstream budget window
//   - footballdata_budget_blocks_total (Counter): Requests blocked by the budget gate
//   - footballdata_budget_throttles_total (Counter): Requests throttled on a low budget
//
// Upstream Request Metrics (pkg/footballdata):
//   - footballdata_requests_total{endpoint, status} (Counter): Requests by endpoint and status
//   - footballdata_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - footballdata_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// In-Memory Cache Metrics (pkg/ttlcache):
//   - footystats_ttlcache_hits_total{namespace} (Counter): Hits by namespace
//   - footystats_ttlcache_misses_total{namespace} (Counter): Misses by namespace
//   - footystats_ttlcache_evictions_total{namespace, mechanism} (Counter): Evictions, lazy vs sweep
//
// Durable Cache Metrics (pkg/methodcache):
//   - footystats_methodcache_hits_total (Counter): Durable cache hits
//   - footystats_methodcache_misses_total (Counter): Durable cache misses
//   - footystats_methodcache_decode_failures_total (Counter): Rows that failed to decode
//   - footystats_methodcache_sweep_deletions_total (Counter): Rows removed by the sweep
//   - footystats_methodcache_errors_total{operation} (Counter): Operation errors
//
// Example Prometheus Queries:
//
//   # In-memory cache hit rate
//   sum(rate(footystats_ttlcache_hits_total[5m])) /
//   (sum(rate(footystats_ttlcache_hits_total[5m])) + sum(rate(footystats_ttlcache_misses_total[5m])))
//
//   # Upstream budget status
//   footballdata_requests_available < 3
//
//   # Upstream error rate
//   rate(footballdata_errors_total[5m])
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(footballdata_request_duration_seconds_bucket[5m]))
