package ttlcache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpulse/footystats/pkg/logging"
)

// Namespace names used for logging and metrics.
const (
	namespacePrediction  = "prediction"
	namespacePerformance = "performance"
)

// Stats reports per-namespace entry counts. Total and active differ because
// deletion is lazy: expired entries linger until a read or sweep removes
// them.
type Stats struct {
	TotalPredictions  int `json:"totalPredictions"`
	TotalPerformance  int `json:"totalPerformance"`
	ActivePredictions int `json:"activePredictions"`
	ActivePerformance int `json:"activePerformance"`
}

// Cache is the in-memory TTL cache with two independent namespaces: one for
// comparison/prediction results keyed by normalized team pair, one for
// performance results keyed by player id.
type Cache struct {
	predictions *namespace
	performance *namespace
	ttl         time.Duration
	logger      zerolog.Logger
}

// New creates a cache with the given TTL. A non-positive ttl falls back to
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		predictions: newNamespace(namespacePrediction),
		performance: newNamespace(namespacePerformance),
		ttl:         ttl,
		logger:      logging.NewLogger("ttlcache"),
	}
}

// GetPrediction returns the cached comparison/prediction result for the
// given normalized pair key. Absence is a boolean, never an error.
func (c *Cache) GetPrediction(key string) (any, bool) {
	return c.predictions.get(key)
}

// PutPrediction stores a comparison/prediction result, unconditionally
// overwriting any existing entry and resetting its age to zero.
func (c *Cache) PutPrediction(key string, value any) {
	c.predictions.put(key, newEntry(value, c.ttl))
}

// GetPerformance returns the cached performance result for a player id.
func (c *Cache) GetPerformance(key string) (any, bool) {
	return c.performance.get(key)
}

// PutPerformance stores a performance result for a player id.
func (c *Cache) PutPerformance(key string, value any) {
	c.performance.put(key, newEntry(value, c.ttl))
}

// ClearExpired removes every expired entry in both namespaces and returns
// the counts removed. Safe to call concurrently with get/put: an entry that
// was refreshed by put after the sweep snapshot is never removed.
func (c *Cache) ClearExpired() (removedPredictions, removedPerformance int) {
	removedPredictions = c.predictions.clearExpired()
	removedPerformance = c.performance.clearExpired()

	if removedPredictions > 0 || removedPerformance > 0 {
		c.logger.Info().
			Int("predictions_removed", removedPredictions).
			Int("performance_removed", removedPerformance).
			Msg("Expired cache entries removed")
	}

	return removedPredictions, removedPerformance
}

// ClearAll drops every entry in every namespace unconditionally.
func (c *Cache) ClearAll() {
	c.predictions.clearAll()
	c.performance.clearAll()
	c.logger.Info().Msg("All cache entries dropped")
}

// Stats returns per-namespace totals and not-yet-expired counts as of now.
func (c *Cache) Stats() Stats {
	now := time.Now()
	totalPred, activePred := c.predictions.counts(now)
	totalPerf, activePerf := c.performance.counts(now)
	return Stats{
		TotalPredictions:  totalPred,
		TotalPerformance:  totalPerf,
		ActivePredictions: activePred,
		ActivePerformance: activePerf,
	}
}

// namespace is one independent key space of the cache.
type namespace struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*Entry
}

func newNamespace(name string) *namespace {
	return &namespace{
		name:    name,
		entries: make(map[string]*Entry),
	}
}

// get returns the value for key if present and not expired. A hit that is
// found expired counts as a miss and evicts the entry as a side effect.
func (n *namespace) get(key string) (any, bool) {
	n.mu.RLock()
	entry, exists := n.entries[key]
	n.mu.RUnlock()

	if !exists {
		cacheMisses.WithLabelValues(n.name).Inc()
		return nil, false
	}

	if entry.IsExpired(time.Now()) {
		// Lazy eviction. Compare the entry reference so a concurrent put
		// that refreshed the key is never deleted.
		n.mu.Lock()
		if current, ok := n.entries[key]; ok && current == entry {
			delete(n.entries, key)
			cacheEvictions.WithLabelValues(n.name, "lazy").Inc()
		}
		n.mu.Unlock()

		cacheMisses.WithLabelValues(n.name).Inc()
		return nil, false
	}

	cacheHits.WithLabelValues(n.name).Inc()
	return entry.Value, true
}

func (n *namespace) put(key string, entry *Entry) {
	n.mu.Lock()
	n.entries[key] = entry
	n.mu.Unlock()
}

// clearExpired removes expired entries by snapshot: it collects the expired
// (key, entry) pairs first and deletes each one only if the map still holds
// that exact entry, so a put racing the sweep always wins.
func (n *namespace) clearExpired() int {
	now := time.Now()

	n.mu.RLock()
	expired := make(map[string]*Entry)
	for key, entry := range n.entries {
		if entry.IsExpired(now) {
			expired[key] = entry
		}
	}
	n.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	removed := 0
	n.mu.Lock()
	for key, snapshot := range expired {
		if current, ok := n.entries[key]; ok && current == snapshot {
			delete(n.entries, key)
			removed++
		}
	}
	n.mu.Unlock()

	if removed > 0 {
		cacheEvictions.WithLabelValues(n.name, "sweep").Add(float64(removed))
	}

	return removed
}

func (n *namespace) clearAll() {
	n.mu.Lock()
	n.entries = make(map[string]*Entry)
	n.mu.Unlock()
}

func (n *namespace) counts(now time.Time) (total, active int) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	total = len(n.entries)
	for _, entry := range n.entries {
		if !entry.IsExpired(now) {
			active++
		}
	}
	return total, active
}
