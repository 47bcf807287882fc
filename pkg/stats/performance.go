package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/matchpulse/footystats/pkg/footballdata"
	"github.com/matchpulse/footystats/pkg/history"
	"github.com/matchpulse/footystats/pkg/logging"
	"github.com/matchpulse/footystats/pkg/methodcache"
	"github.com/matchpulse/footystats/pkg/ttlcache"
)

// PlayerPerformanceStats is the per-player aggregate over recent match
// involvement. The upstream person feed does not attribute the player to a
// side, so the record describes the matches themselves.
type PlayerPerformanceStats struct {
	PlayerID         string   `json:"playerId"`
	MatchesPlayed    int      `json:"matchesPlayed"`
	EstimatedMinutes int      `json:"estimatedMinutes"`
	TotalGoals       int      `json:"totalGoals"`
	AvgGoalsPerMatch float64  `json:"avgGoalsPerMatch"`
	Competitions     []string `json:"competitions"`
}

// PerformanceService aggregates player performance, cached in the
// performance namespace under the plain player id.
type PerformanceService struct {
	client      DataClient
	cache       *ttlcache.Cache
	methodCache *methodcache.Manager
	history     history.Store
	logger      zerolog.Logger
}

// NewPerformanceService creates the performance service. The method cache
// and history store may be nil.
func NewPerformanceService(client DataClient, cache *ttlcache.Cache, methodCache *methodcache.Manager, historyStore history.Store) *PerformanceService {
	if client == nil {
		panic("data client cannot be nil")
	}
	if cache == nil {
		panic("ttl cache cannot be nil")
	}
	return &PerformanceService{
		client:      client,
		cache:       cache,
		methodCache: methodCache,
		history:     historyStore,
		logger:      logging.NewLogger("performance"),
	}
}

// PlayerPerformance returns the player's recent performance aggregate,
// serving from the caches when possible and refreshing the user's history
// row on every path.
func (s *PerformanceService) PlayerPerformance(ctx context.Context, userID, playerID string) (*PlayerPerformanceStats, error) {
	if value, ok := s.cache.GetPerformance(playerID); ok {
		if performance, ok := value.(*PlayerPerformanceStats); ok {
			s.logger.Debug().Str("player_id", playerID).Msg("Performance served from memory")
			s.persistPerformance(ctx, userID, performance)
			return performance, nil
		}
		s.logger.Error().Str("player_id", playerID).Msg("Cached performance has unexpected type, recomputing")
	}

	signature := "playerPerformance:" + playerID
	if s.methodCache != nil {
		if payload, err := s.methodCache.GetCachedResult(ctx, signature); err == nil {
			var performance PlayerPerformanceStats
			if err := json.Unmarshal(payload, &performance); err != nil {
				s.logger.Error().Err(err).Str("signature", signature).Msg("Durable performance failed to decode, recomputing")
			} else {
				s.cache.PutPerformance(playerID, &performance)
				s.persistPerformance(ctx, userID, &performance)
				return &performance, nil
			}
		}
	}

	matches, err := s.client.GetPersonMatches(ctx, playerID, RecentMatchWindow)
	if err != nil {
		return nil, fmt.Errorf("fetch recent matches for player %s: %w", playerID, err)
	}

	performance := foldPlayerMatches(playerID, matches)

	s.cache.PutPerformance(playerID, performance)
	if s.methodCache != nil {
		if err := s.methodCache.CacheResult(ctx, signature, performance); err != nil {
			s.logger.Error().Err(err).Str("signature", signature).Msg("Failed to write durable performance")
		}
	}
	s.persistPerformance(ctx, userID, performance)

	s.logger.Info().
		Str("player_id", playerID).
		Int("matches", performance.MatchesPlayed).
		Msg("Performance computed")

	return performance, nil
}

// foldPlayerMatches accumulates the player's recent match involvement.
func foldPlayerMatches(playerID string, matches []footballdata.Match) *PlayerPerformanceStats {
	performance := &PlayerPerformanceStats{PlayerID: playerID}

	for _, match := range matches {
		performance.MatchesPlayed++
		performance.TotalGoals += match.Score.FullTime.Home + match.Score.FullTime.Away
	}

	performance.EstimatedMinutes = performance.MatchesPlayed * 90
	if performance.MatchesPlayed > 0 {
		performance.AvgGoalsPerMatch = float64(performance.TotalGoals) / float64(performance.MatchesPlayed)
	}
	performance.Competitions = discoverLeagues(matches)

	return performance
}

// persistPerformance refreshes the user's history row with the latest
// performance aggregate. Failures are a logged side effect only.
func (s *PerformanceService) persistPerformance(ctx context.Context, userID string, performance *PlayerPerformanceStats) {
	if s.history == nil || userID == "" {
		return
	}

	payload, err := json.Marshal(performance)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to encode performance for history")
		return
	}

	row, err := s.history.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to read history row")
		return
	}
	if row == nil {
		row = &history.Row{UserID: userID}
	}
	row.PerformanceJSON = string(payload)

	if err := s.history.Save(ctx, row); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save history row")
	}
}
