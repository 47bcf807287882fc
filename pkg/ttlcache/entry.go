// Package ttlcache provides the in-process, time-bounded result cache for
// comparison/prediction and player performance results. Expiry is lazy on
// read; a background sweep exists for memory hygiene only and is never
// required for correctness.
package ttlcache

import "time"

// DefaultTTL is the fixed wall-clock lifetime of every entry.
const DefaultTTL = 60 * time.Minute

// Entry wraps a cached payload with its creation and expiry timestamps.
// Entries are immutable once created; an update for the same key replaces
// the entry, recomputing both timestamps.
type Entry struct {
	Value     any
	CreatedAt time.Time
	ExpiresAt time.Time
}

// newEntry creates an entry whose ExpiresAt is CreatedAt + ttl.
func newEntry(value any, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the entry is expired at the given time.
func (e *Entry) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// TTL returns the time until expiration. Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
