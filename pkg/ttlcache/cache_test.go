package ttlcache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCache_PutAndGet(t *testing.T) {
	cache := New(time.Minute)

	cache.PutPrediction("65:86", "comparison result")

	value, ok := cache.GetPrediction("65:86")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if value != "comparison result" {
		t.Errorf("value = %v, want comparison result", value)
	}
}

func TestCache_GetMiss(t *testing.T) {
	cache := New(time.Minute)

	if _, ok := cache.GetPrediction("unknown"); ok {
		t.Error("expected cache miss for unknown key")
	}
	if _, ok := cache.GetPerformance("unknown"); ok {
		t.Error("expected cache miss for unknown key")
	}
}

func TestCache_PairKeySymmetry(t *testing.T) {
	cache := New(time.Minute)

	cache.PutPrediction(PairKey("86", "65"), "result")

	if _, ok := cache.GetPrediction(PairKey("65", "86")); !ok {
		t.Error("cache must be symmetric in its two team arguments")
	}
}

func TestCache_NamespacesAreIndependent(t *testing.T) {
	cache := New(time.Minute)

	cache.PutPrediction("42", "prediction")
	cache.PutPerformance("42", "performance")

	prediction, _ := cache.GetPrediction("42")
	performance, _ := cache.GetPerformance("42")

	if prediction != "prediction" || performance != "performance" {
		t.Errorf("namespaces leaked: prediction=%v performance=%v", prediction, performance)
	}
}

func TestCache_PutOverwritesAndResetsAge(t *testing.T) {
	cache := New(time.Minute)

	cache.PutPrediction("key", "old")
	cache.PutPrediction("key", "new")

	value, ok := cache.GetPrediction("key")
	if !ok || value != "new" {
		t.Errorf("value = %v, ok = %v, want new entry", value, ok)
	}

	stats := cache.Stats()
	if stats.TotalPredictions != 1 {
		t.Errorf("TotalPredictions = %d, want 1 (overwrite, not append)", stats.TotalPredictions)
	}
}

func TestCache_LazyExpiry(t *testing.T) {
	cache := New(time.Minute)

	// Plant an already expired entry directly; the sweep stays disabled so
	// correctness must come from the lazy path alone.
	expired := &Entry{
		Value:     "stale",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}
	cache.predictions.put("65:86", expired)

	if _, ok := cache.GetPrediction("65:86"); ok {
		t.Fatal("expired entry must read as a miss")
	}

	// The failed read must have evicted the entry.
	if total, _ := cache.predictions.counts(time.Now()); total != 0 {
		t.Errorf("entry count after lazy eviction = %d, want 0", total)
	}
}

func TestCache_TTLBoundary(t *testing.T) {
	cache := New(time.Minute)

	// Retrievable just before expiry.
	fresh := &Entry{
		Value:     "payload",
		CreatedAt: time.Now().Add(-time.Minute),
		ExpiresAt: time.Now().Add(50 * time.Millisecond),
	}
	cache.predictions.put("key", fresh)

	if _, ok := cache.GetPrediction("key"); !ok {
		t.Error("entry must be retrievable before its expiry")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := cache.GetPrediction("key"); ok {
		t.Error("entry must be a miss after its expiry")
	}
}

func TestCache_ClearExpired(t *testing.T) {
	cache := New(time.Minute)

	cache.PutPrediction("fresh", "keep")
	cache.predictions.put("stale1", &Entry{ExpiresAt: time.Now().Add(-time.Minute)})
	cache.predictions.put("stale2", &Entry{ExpiresAt: time.Now().Add(-time.Minute)})
	cache.performance.put("stale3", &Entry{ExpiresAt: time.Now().Add(-time.Minute)})

	removedPredictions, removedPerformance := cache.ClearExpired()

	if removedPredictions != 2 {
		t.Errorf("removedPredictions = %d, want 2", removedPredictions)
	}
	if removedPerformance != 1 {
		t.Errorf("removedPerformance = %d, want 1", removedPerformance)
	}

	if _, ok := cache.GetPrediction("fresh"); !ok {
		t.Error("fresh entry must survive the sweep")
	}
}

func TestCache_ClearExpiredKeepsRefreshedEntry(t *testing.T) {
	cache := New(time.Minute)

	// An entry expired in place, then refreshed by a put before the sweep
	// deletes: the sweep must leave the new entry alone.
	cache.predictions.put("key", &Entry{ExpiresAt: time.Now().Add(-time.Minute)})
	cache.PutPrediction("key", "refreshed")

	removed, _ := cache.ClearExpired()
	if removed != 0 {
		t.Errorf("removed = %d, want 0 (refreshed entry is not expired)", removed)
	}

	value, ok := cache.GetPrediction("key")
	if !ok || value != "refreshed" {
		t.Errorf("value = %v, ok = %v, want refreshed entry intact", value, ok)
	}
}

func TestCache_ClearAll(t *testing.T) {
	cache := New(time.Minute)

	cache.PutPrediction("a", 1)
	cache.PutPrediction("b", 2)
	cache.PutPerformance("c", 3)

	cache.ClearAll()

	stats := cache.Stats()
	if stats.TotalPredictions != 0 || stats.TotalPerformance != 0 {
		t.Errorf("Stats after ClearAll = %+v, want all zero", stats)
	}
}

func TestCache_Stats(t *testing.T) {
	cache := New(time.Minute)

	cache.PutPrediction("active", "v")
	cache.predictions.put("expired", &Entry{ExpiresAt: time.Now().Add(-time.Minute)})
	cache.PutPerformance("player", "v")

	stats := cache.Stats()

	if stats.TotalPredictions != 2 {
		t.Errorf("TotalPredictions = %d, want 2 (deletion is lazy)", stats.TotalPredictions)
	}
	if stats.ActivePredictions != 1 {
		t.Errorf("ActivePredictions = %d, want 1", stats.ActivePredictions)
	}
	if stats.TotalPerformance != 1 || stats.ActivePerformance != 1 {
		t.Errorf("performance stats = %d/%d, want 1/1", stats.TotalPerformance, stats.ActivePerformance)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d:%d", worker, j)
				cache.PutPrediction(key, j)
				cache.GetPrediction(key)
				if j%10 == 0 {
					cache.ClearExpired()
				}
			}
		}(i)
	}
	wg.Wait()

	stats := cache.Stats()
	if stats.TotalPredictions != 1000 {
		t.Errorf("TotalPredictions = %d, want 1000", stats.TotalPredictions)
	}
}
