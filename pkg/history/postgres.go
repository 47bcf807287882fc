package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS user_query_history (
	user_id          TEXT PRIMARY KEY,
	predictions_json TEXT NOT NULL DEFAULT '',
	performance_json TEXT NOT NULL DEFAULT '',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore is the durable Store implementation backed by pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed history store and ensures its
// table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create history table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// FindByUserID implements Store.
func (s *PostgresStore) FindByUserID(ctx context.Context, userID string) (*Row, error) {
	var row Row
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, predictions_json, performance_json, updated_at
		 FROM user_query_history WHERE user_id = $1`, userID).
		Scan(&row.UserID, &row.PredictionsJSON, &row.PerformanceJSON, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query history row: %w", err)
	}
	return &row, nil
}

// Save implements Store with a single-row-per-user upsert.
func (s *PostgresStore) Save(ctx context.Context, row *Row) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_query_history (user_id, predictions_json, performance_json, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET predictions_json = EXCLUDED.predictions_json,
		     performance_json = EXCLUDED.performance_json,
		     updated_at = now()`,
		row.UserID, row.PredictionsJSON, row.PerformanceJSON)
	if err != nil {
		return fmt.Errorf("upsert history row: %w", err)
	}
	return nil
}
