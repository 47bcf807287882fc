// Package methodcache provides the durable, persistence-backed method
// result cache. Rows are keyed by an opaque method-call signature, survive
// process restarts, and expire after a short TTL. The cache performs no key
// normalization: a caller wanting symmetric signatures normalizes them
// itself.
package methodcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/matchpulse/footystats/pkg/logging"
)

// DefaultTTL is the row lifetime. Tighter than the in-memory cache because
// the durable tier backs fresher, more volatile data.
const DefaultTTL = 5 * time.Minute

// DefaultCleanupInterval is how often expired rows are bulk-deleted.
const DefaultCleanupInterval = 10 * time.Minute

// keyPrefix namespaces the rows within Redis.
const keyPrefix = "methodcache:"

// ErrCacheMiss indicates the signature has no valid row.
var ErrCacheMiss = errors.New("method cache miss")

// Row is the persisted shape of one cached method result. Exactly one row
// exists per signature regardless of recompute frequency.
type Row struct {
	Signature string          `json:"signature"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Stats is the cumulative hit/miss accounting of one manager instance.
// The counters live for the process lifetime only; the rows they describe
// survive restarts. This asymmetry is deliberate.
type Stats struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hitRate"`
	ValidEntries int     `json:"validEntries"`
}

// Manager handles durable method cache operations against Redis.
type Manager struct {
	redis  *redis.Client
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
	logger zerolog.Logger
}

// NewManager creates a durable method cache manager. A non-positive ttl
// falls back to DefaultTTL.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		redis:  redisClient,
		ttl:    ttl,
		logger: logging.NewLogger("methodcache"),
	}
}

// GetCachedResult returns the payload stored for signature if a valid row
// exists. Validity is evaluated at read time (expiresAt > now); expired rows
// are simply not returned, not deleted inline. A row that fails to decode is
// logged and counted as a miss, never propagated as an error.
func (m *Manager) GetCachedResult(ctx context.Context, signature string) (json.RawMessage, error) {
	data, err := m.redis.Get(ctx, keyPrefix+signature).Bytes()
	if err != nil {
		if err == redis.Nil {
			m.misses.Add(1)
			cacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		m.logger.Error().
			Err(err).
			Str("signature", signature).
			Msg("Cached row failed to decode, treating as miss")
		m.misses.Add(1)
		cacheMisses.Inc()
		decodeFailures.Inc()
		return nil, ErrCacheMiss
	}

	if !row.ExpiresAt.After(time.Now()) {
		m.misses.Add(1)
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	m.hits.Add(1)
	cacheHits.Inc()
	return row.Payload, nil
}

// CacheResult upserts the result for signature: the payload is overwritten
// and both timestamps are refreshed in place, so one row per signature is
// guaranteed regardless of recompute frequency.
func (m *Manager) CacheResult(ctx context.Context, signature string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal method result: %w", err)
	}

	now := time.Now()
	row := Row{
		Signature: signature,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	data, err := json.Marshal(row)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache row: %w", err)
	}

	// No Redis-side TTL: expired rows stay until the cleanup sweep so that
	// read-time validity is the single source of truth.
	if err := m.redis.Set(ctx, keyPrefix+signature, data, 0).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	m.logger.Debug().
		Str("signature", signature).
		Time("expires_at", row.ExpiresAt).
		Msg("Method result cached")

	return nil
}

// CleanupExpiredEntries bulk-deletes every row whose expiry has passed and
// returns the deleted count. Idempotent and safe to run concurrently with
// reads and upserts; a read racing the delete observes an ordinary miss.
func (m *Manager) CleanupExpiredEntries(ctx context.Context) (int, error) {
	now := time.Now()
	deleted := 0

	iter := m.redis.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		data, err := m.redis.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue // removed by a concurrent sweep or operator
			}
			return deleted, fmt.Errorf("redis get during cleanup: %w", err)
		}

		var row Row
		if err := json.Unmarshal(data, &row); err != nil {
			// Undecodable rows can never be served; remove them too.
			m.logger.Error().Err(err).Str("key", key).Msg("Removing undecodable cache row")
			if err := m.redis.Del(ctx, key).Err(); err != nil {
				return deleted, fmt.Errorf("redis del during cleanup: %w", err)
			}
			deleted++
			continue
		}

		if !row.ExpiresAt.After(now) {
			if err := m.redis.Del(ctx, key).Err(); err != nil {
				return deleted, fmt.Errorf("redis del during cleanup: %w", err)
			}
			deleted++
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan during cleanup: %w", err)
	}

	if deleted > 0 {
		sweepDeletions.Add(float64(deleted))
	}
	m.logger.Info().Int("deleted", deleted).Msg("Expired method cache rows removed")

	return deleted, nil
}

// RunCleanupLoop runs CleanupExpiredEntries on a fixed interval until the
// context is cancelled. A non-positive interval falls back to
// DefaultCleanupInterval.
func (m *Manager) RunCleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.CleanupExpiredEntries(ctx); err != nil {
				m.logger.Error().Err(err).Msg("Cleanup sweep failed")
			}
		case <-ctx.Done():
			m.logger.Debug().Msg("Cleanup loop stopped")
			return
		}
	}
}

// GetStatistics returns the cumulative hit/miss counters, the derived
// hit-rate percentage, and the count of currently-valid rows.
func (m *Manager) GetStatistics(ctx context.Context) (Stats, error) {
	stats := Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}

	now := time.Now()
	iter := m.redis.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := m.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return stats, fmt.Errorf("redis get during statistics: %w", err)
		}

		var row Row
		if err := json.Unmarshal(data, &row); err != nil {
			continue
		}
		if row.ExpiresAt.After(now) {
			stats.ValidEntries++
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("redis scan during statistics: %w", err)
	}

	return stats, nil
}

// ResetStatistics zeroes the process-lifetime hit/miss counters. The rows
// themselves are unaffected.
func (m *Manager) ResetStatistics() {
	m.hits.Store(0)
	m.misses.Store(0)
}
