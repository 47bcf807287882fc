package ttlcache

import (
	"context"
	"testing"
	"time"
)

func TestSweeper_RemovesExpiredEntries(t *testing.T) {
	cache := New(time.Minute)
	cache.predictions.put("stale", &Entry{ExpiresAt: time.Now().Add(-time.Minute)})
	cache.PutPrediction("fresh", "keep")

	sweeper := NewSweeper(cache, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	total, _ := cache.predictions.counts(time.Now())
	if total != 1 {
		t.Errorf("entry count after sweep = %d, want 1", total)
	}
	if _, ok := cache.GetPrediction("fresh"); !ok {
		t.Error("fresh entry must survive the sweep")
	}
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	sweeper := NewSweeper(New(time.Minute), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}

func TestNewSweeper_DefaultInterval(t *testing.T) {
	sweeper := NewSweeper(New(time.Minute), 0)
	if sweeper.interval != DefaultSweepInterval {
		t.Errorf("interval = %v, want %v", sweeper.interval, DefaultSweepInterval)
	}
}
