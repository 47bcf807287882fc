// Package history persists the last computed prediction and performance
// result per user. The aggregation services write into it as a side effect
// of every computation; they do not own its lifecycle.
package history

import (
	"context"
	"sync"
	"time"
)

// Row is the single per-user history record. One row per user; each new
// computation overwrites the matching JSON field.
type Row struct {
	UserID          string    `json:"userId"`
	PredictionsJSON string    `json:"predictionsJson"`
	PerformanceJSON string    `json:"performanceJson"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Store is the history store contract consumed by the aggregation services.
type Store interface {
	// FindByUserID returns the user's row, or (nil, nil) when absent.
	FindByUserID(ctx context.Context, userID string) (*Row, error)

	// Save upserts the row by user id.
	Save(ctx context.Context, row *Row) error
}

// MemoryStore is an in-process Store for tests and cache-less runs.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Row
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Row)}
}

// FindByUserID implements Store.
func (s *MemoryStore) FindByUserID(_ context.Context, userID string) (*Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[userID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, row *Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *row
	stored.UpdatedAt = time.Now()
	s.rows[row.UserID] = stored
	return nil
}
