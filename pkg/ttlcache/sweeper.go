package ttlcache

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchpulse/footystats/pkg/logging"
)

// DefaultSweepInterval is how often the background sweep runs.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper periodically removes expired entries from a cache. It is a memory
// hygiene optimization only: lazy eviction on read already guarantees
// correctness with the sweeper disabled.
type Sweeper struct {
	cache    *Cache
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper creates a sweeper for the given cache. A non-positive interval
// falls back to DefaultSweepInterval.
func NewSweeper(cache *Cache, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		cache:    cache,
		interval: interval,
		logger:   logging.NewLogger("ttlcache-sweeper"),
	}
}

// Start runs the sweep loop until the context is cancelled. It blocks and
// should typically be run in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			predictions, performance := s.cache.ClearExpired()
			s.logger.Debug().
				Int("predictions_removed", predictions).
				Int("performance_removed", performance).
				Msg("Sweep cycle complete")
		case <-ctx.Done():
			s.logger.Debug().Msg("Sweeper stopped")
			return
		}
	}
}
