// Package ratelimit implements request budget tracking and gating for the
// upstream football data provider. It monitors the X-Requests-Available-Minute
// and X-RequestCounter-Reset headers so the client stops spending quota before
// the provider starts rejecting calls.
package ratelimit

import (
	"time"
)

// Redis keys for budget state storage.
const (
	RedisKeyRequestsAvailable = "footballdata:budget:requests_available"
	RedisKeyResetTimestamp    = "footballdata:budget:reset_timestamp"
	RedisKeyLastUpdate        = "footballdata:budget:last_update"
)

// Thresholds for budget decisions. The free provider tier allows ten
// requests per minute, so the margins are tight.
const (
	// BudgetThresholdCritical blocks all requests when the remaining budget
	// falls below this value.
	BudgetThresholdCritical = 1

	// BudgetThresholdWarning applies throttling when the remaining budget
	// falls below this value.
	BudgetThresholdWarning = 3

	// BudgetThresholdHealthy indicates normal operation.
	BudgetThresholdHealthy = 5
)

// BudgetState represents the current upstream request budget.
// The state is shared across all client instances via Redis.
type BudgetState struct {
	// RequestsAvailable is the number of requests left in the current
	// window, extracted from the X-Requests-Available-Minute header.
	RequestsAvailable int `json:"requests_available"`

	// ResetAt is the timestamp when the budget window resets, calculated
	// from the X-RequestCounter-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is the timestamp when this state was last updated.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy indicates whether the budget is in a healthy state.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *BudgetState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked because the
// budget is exhausted.
func (s *BudgetState) NeedsCriticalBlock() bool {
	return s.RequestsAvailable < BudgetThresholdCritical
}

// NeedsThrottling returns true if requests should be throttled to stretch
// the remaining budget across the window.
func (s *BudgetState) NeedsThrottling() bool {
	return s.RequestsAvailable < BudgetThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the budget window resets.
// Returns 0 if the reset time has already passed.
func (s *BudgetState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on the current budget.
func (s *BudgetState) UpdateHealth() {
	s.IsHealthy = s.RequestsAvailable >= BudgetThresholdHealthy
}
