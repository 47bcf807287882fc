package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for budget tracking.
var (
	requestsAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "footballdata_requests_available",
		Help: "Number of requests remaining in the current upstream budget window",
	})

	budgetBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "footballdata_budget_blocks_total",
		Help: "Total number of requests blocked due to exhausted upstream budget",
	})

	budgetThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "footballdata_budget_throttles_total",
		Help: "Total number of requests throttled due to low upstream budget",
	})
)

// Tracker monitors the upstream request budget and gates requests.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new budget tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current budget state from Redis.
// Returns a default healthy state if no data exists yet.
func (t *Tracker) GetState(ctx context.Context) (*BudgetState, error) {
	available, err := t.redis.Get(ctx, RedisKeyRequestsAvailable).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get requests available: %w", err)
	}

	resetTimestamp, err := t.redis.Get(ctx, RedisKeyResetTimestamp).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get reset timestamp: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	// No state in Redis yet: assume a fresh window.
	if err == redis.Nil {
		t.logger.Debug().Msg("No budget state in Redis, returning default healthy state")
		return &BudgetState{
			RequestsAvailable: 10,
			ResetAt:           time.Now().Add(60 * time.Second),
			LastUpdate:        time.Now(),
			IsHealthy:         true,
		}, nil
	}

	var lastUpdate time.Time
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	state := &BudgetState{
		RequestsAvailable: available,
		ResetAt:           time.Unix(resetTimestamp, 0),
		LastUpdate:        lastUpdate,
	}
	state.UpdateHealth()

	return state, nil
}

// UpdateFromHeaders parses the provider's budget headers and updates Redis.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	availableStr := headers.Get("X-Requests-Available-Minute")
	if availableStr == "" {
		// Header not present on every endpoint; nothing to record.
		return nil
	}

	available, err := strconv.Atoi(availableStr)
	if err != nil {
		return fmt.Errorf("parse X-Requests-Available-Minute header: %w", err)
	}

	resetSeconds := 60
	if resetStr := headers.Get("X-RequestCounter-Reset"); resetStr != "" {
		resetSeconds, err = strconv.Atoi(resetStr)
		if err != nil {
			return fmt.Errorf("parse X-RequestCounter-Reset header: %w", err)
		}
	}

	now := time.Now()
	state := &BudgetState{
		RequestsAvailable: available,
		ResetAt:           now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate:        now,
	}
	state.UpdateHealth()

	// Store in Redis atomically
	pipe := t.redis.Pipeline()
	pipe.Set(ctx, RedisKeyRequestsAvailable, available, 0)
	pipe.Set(ctx, RedisKeyResetTimestamp, state.ResetAt.Unix(), 0)

	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}
	pipe.Set(ctx, RedisKeyLastUpdate, lastUpdateJSON, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store budget state in redis: %w", err)
	}

	requestsAvailable.Set(float64(available))

	var logEvent *zerolog.Event
	var message string
	switch {
	case state.NeedsCriticalBlock():
		logEvent = t.logger.Error()
		message = "Upstream budget EXHAUSTED - requests will be blocked"
	case state.NeedsThrottling():
		logEvent = t.logger.Warn()
		message = "Upstream budget LOW - requests will be throttled"
	default:
		logEvent = t.logger.Info()
		message = "Upstream budget state updated"
	}
	logEvent.
		Int("requests_available", available).
		Time("reset_at", state.ResetAt).
		Bool("is_healthy", state.IsHealthy).
		Msg(message)

	return nil
}

// ShouldAllowRequest checks if a request should be allowed given the current
// budget. Returns false if the request should be blocked; when the budget is
// merely low it sleeps briefly to stretch the window and returns true.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get budget state: %w", err)
	}

	// Exhausted: block until the window resets.
	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Int("requests_available", state.RequestsAvailable).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Upstream budget exhausted - blocking request")

		budgetBlocksTotal.Inc()
		return false, nil
	}

	// Low: stretch the remaining budget.
	if state.NeedsThrottling() {
		t.logger.Warn().
			Int("requests_available", state.RequestsAvailable).
			Msg("Upstream budget low - throttling request")

		budgetThrottlesTotal.Inc()
		time.Sleep(1 * time.Second)
	}

	return true, nil
}
