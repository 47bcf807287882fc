package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/matchpulse/footystats/pkg/history"
	"github.com/matchpulse/footystats/pkg/logging"
	"github.com/matchpulse/footystats/pkg/methodcache"
	"github.com/matchpulse/footystats/pkg/ttlcache"
)

// winnerKeyPrefix separates prediction entries from plain comparisons
// within the shared pair namespace.
const winnerKeyPrefix = "winner:"

// TeamPrediction is one side of a win prediction.
type TeamPrediction struct {
	TeamID         string  `json:"teamId"`
	TeamName       string  `json:"teamName"`
	Strength       float64 `json:"strength"`
	WinProbability float64 `json:"winProbability"`
}

// Prediction is the derived win-probability judgment for a team pair,
// carrying the underlying comparison it was computed from.
type Prediction struct {
	Team1           TeamPrediction   `json:"team1"`
	Team2           TeamPrediction   `json:"team2"`
	PredictedWinner string           `json:"predictedWinner"`
	Comparison      ComparisonResult `json:"comparison"`
}

// PredictionService derives win probabilities from per-team statistics,
// backed by the in-memory pair cache and the durable method cache.
type PredictionService struct {
	comparison  *ComparisonService
	cache       *ttlcache.Cache
	methodCache *methodcache.Manager
	history     history.Store
	logger      zerolog.Logger
}

// NewPredictionService creates the prediction service. The method cache and
// history store may be nil, disabling the durable tier and history writes
// respectively.
func NewPredictionService(comparison *ComparisonService, cache *ttlcache.Cache, methodCache *methodcache.Manager, historyStore history.Store) *PredictionService {
	if comparison == nil {
		panic("comparison service cannot be nil")
	}
	if cache == nil {
		panic("ttl cache cannot be nil")
	}
	return &PredictionService{
		comparison:  comparison,
		cache:       cache,
		methodCache: methodCache,
		history:     historyStore,
		logger:      logging.NewLogger("prediction"),
	}
}

// PredictWinner returns the win prediction for the two teams. Lookup order:
// in-memory pair cache, durable method cache, full computation. Both tiers
// are refreshed on a computation, and the user's history row is refreshed on
// every path.
func (s *PredictionService) PredictWinner(ctx context.Context, userID, team1ID, team2ID string) (*Prediction, error) {
	pairKey := ttlcache.PairKey(team1ID, team2ID)
	cacheKey := winnerKeyPrefix + pairKey

	if value, ok := s.cache.GetPrediction(cacheKey); ok {
		if prediction, ok := value.(*Prediction); ok {
			s.logger.Debug().Str("cache_key", cacheKey).Msg("Prediction served from memory")
			s.persistPrediction(ctx, userID, prediction)
			return prediction, nil
		}
		s.logger.Error().Str("cache_key", cacheKey).Msg("Cached prediction has unexpected type, recomputing")
	}

	// Durable tier: signature normalization is this caller's job.
	signature := "predictWinner:" + pairKey
	if s.methodCache != nil {
		if payload, err := s.methodCache.GetCachedResult(ctx, signature); err == nil {
			var prediction Prediction
			if err := json.Unmarshal(payload, &prediction); err != nil {
				s.logger.Error().Err(err).Str("signature", signature).Msg("Durable prediction failed to decode, recomputing")
			} else {
				s.cache.PutPrediction(cacheKey, &prediction)
				s.persistPrediction(ctx, userID, &prediction)
				s.logger.Debug().Str("signature", signature).Msg("Prediction served from durable cache")
				return &prediction, nil
			}
		}
	}

	team1Stats, err := s.comparison.TeamStats(ctx, team1ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate team %s: %w", team1ID, err)
	}

	team2Stats, err := s.comparison.TeamStats(ctx, team2ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate team %s: %w", team2ID, err)
	}

	prediction := composePrediction(team1Stats, team2Stats)

	s.cache.PutPrediction(cacheKey, prediction)
	if s.methodCache != nil {
		if err := s.methodCache.CacheResult(ctx, signature, prediction); err != nil {
			s.logger.Error().Err(err).Str("signature", signature).Msg("Failed to write durable prediction")
		}
	}
	s.persistPrediction(ctx, userID, prediction)

	s.logger.Info().
		Str("team1_id", team1ID).
		Str("team2_id", team2ID).
		Str("predicted_winner", prediction.PredictedWinner).
		Msg("Prediction computed")

	return prediction, nil
}

// composePrediction folds two per-team aggregates into a win-probability
// judgment. Strength blends league points, goal differential, recent form
// and table position; probabilities are the two strengths normalized.
func composePrediction(team1, team2 TeamComparisonStats) *Prediction {
	strength1 := teamStrength(team1)
	strength2 := teamStrength(team2)

	probability1 := strength1 / (strength1 + strength2)
	probability2 := 1 - probability1

	winner := team1.TeamName
	switch {
	case strength2 > strength1:
		winner = team2.TeamName
	case strength2 == strength1:
		winner = "DRAW"
	}

	return &Prediction{
		Team1: TeamPrediction{
			TeamID:         team1.TeamID,
			TeamName:       team1.TeamName,
			Strength:       strength1,
			WinProbability: probability1,
		},
		Team2: TeamPrediction{
			TeamID:         team2.TeamID,
			TeamName:       team2.TeamName,
			Strength:       strength2,
			WinProbability: probability2,
		},
		PredictedWinner: winner,
		Comparison:      ComparisonResult{Team1: team1, Team2: team2},
	}
}

// teamStrength scores one team's aggregate. The offset keeps every strength
// positive so the probability normalization is always defined.
func teamStrength(team TeamComparisonStats) float64 {
	score := float64(team.TotalPoints) +
		0.5*float64(team.GoalDifference) +
		3*float64(team.WonGames) +
		float64(team.DrawnGames) -
		0.5*team.AvgPosition

	if score < 0 {
		score = 0
	}
	return score + 1
}

// persistPrediction refreshes the user's history row with the latest
// prediction. Failures are a logged side effect only.
func (s *PredictionService) persistPrediction(ctx context.Context, userID string, prediction *Prediction) {
	if s.history == nil || userID == "" {
		return
	}

	payload, err := json.Marshal(prediction)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to encode prediction for history")
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
	row.PredictionsJSON = string(payload)

	if err := s.history.Save(ctx, row); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save history row")
	}
}
