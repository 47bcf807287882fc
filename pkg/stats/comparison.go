package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/matchpulse/footystats/pkg/history"
	"github.com/matchpulse/footystats/pkg/logging"
	"github.com/matchpulse/footystats/pkg/ttlcache"
)

// ComparisonService produces side-by-side statistics comparisons for team
// pairs. Results are cached per normalized pair: a hit short-circuits the
// whole pipeline for both teams at once.
type ComparisonService struct {
	client  DataClient
	cache   *ttlcache.Cache
	history history.Store
	logger  zerolog.Logger
}

// NewComparisonService creates the comparison service. The history store
// may be nil when no per-user history is wanted.
func NewComparisonService(client DataClient, cache *ttlcache.Cache, historyStore history.Store) *ComparisonService {
	if client == nil {
		panic("data client cannot be nil")
	}
	if cache == nil {
		panic("ttl cache cannot be nil")
	}
	return &ComparisonService{
		client:  client,
		cache:   cache,
		history: historyStore,
		logger:  logging.NewLogger("comparison"),
	}
}

// CompareTeams returns the comparison for the two teams, serving from the
// pair cache when possible. Identical ids are computed independently for
// both sides, with no short-circuit. The user's history row is refreshed on
// both the hit and the miss path.
func (s *ComparisonService) CompareTeams(ctx context.Context, userID, team1ID, team2ID string) (*ComparisonResult, error) {
	key := ttlcache.PairKey(team1ID, team2ID)

	if value, ok := s.cache.GetPrediction(key); ok {
		if result, ok := value.(*ComparisonResult); ok {
			s.logger.Debug().Str("cache_key", key).Msg("Comparison served from cache")
			s.persistPredictions(ctx, userID, result)
			return result, nil
		}
		// Unexpected payload shape behaves like a decode failure: a miss.
		s.logger.Error().Str("cache_key", key).Msg("Cached comparison has unexpected type, recomputing")
	}

	team1Stats, err := s.TeamStats(ctx, team1ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate team %s: %w", team1ID, err)
	}

	team2Stats, err := s.TeamStats(ctx, team2ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate team %s: %w", team2ID, err)
	}

	result := &ComparisonResult{Team1: team1Stats, Team2: team2Stats}
	s.cache.PutPrediction(key, result)
	s.persistPredictions(ctx, userID, result)

	s.logger.Info().
		Str("team1_id", team1ID).
		Str("team2_id", team2ID).
		Str("cache_key", key).
		Msg("Comparison computed")

	return result, nil
}

// TeamStats executes the per-team pipeline: recent form, match folding,
// league discovery, standings resolution, derived fields. Absence of data
// (unresolvable league, team missing from a table) is tolerated and skipped;
// failure to retrieve data aborts with a wrapped error.
func (s *ComparisonService) TeamStats(ctx context.Context, teamID string) (TeamComparisonStats, error) {
	matches, err := s.client.GetLastMatchesFinished(ctx, teamID, RecentMatchWindow)
	if err != nil {
		return TeamComparisonStats{}, fmt.Errorf("fetch recent matches for team %s: %w", teamID, err)
	}

	teamStats := foldMatches(teamID, matches)
	teamStats.Leagues = discoverLeagues(matches)

	var fold standingsFold
	if len(teamStats.Leagues) > 0 {
		competitions, err := s.client.GetCompetitions(ctx)
		if err != nil {
			return TeamComparisonStats{}, fmt.Errorf("fetch competitions for team %s: %w", teamID, err)
		}

		for _, league := range teamStats.Leagues {
			competitionID, found := findCompetitionID(competitions, league)
			if !found {
				s.logger.Warn().
					Str("team_id", teamID).
					Str("league", league).
					Msg("League not resolvable to a competition id, skipping")
				continue
			}

			standings, err := s.client.GetStandings(ctx, competitionID)
			if err != nil {
				// Transport failure is never swallowed.
				return TeamComparisonStats{}, fmt.Errorf("fetch standings for league %q: %w", league, err)
			}

			if len(standings.Standings) == 0 {
				s.logger.Warn().
					Str("team_id", teamID).
					Str("league", league).
					Msg("Standings response carries no tables, skipping")
				continue
			}

			row, found := findTeamRow(standings.Standings[0].Table, teamID)
			if !found {
				s.logger.Warn().
					Str("team_id", teamID).
					Str("league", league).
					Msg("Team absent from standings table, skipping")
				continue
			}

			fold.add(row.Position, row.Points, row.GoalDifference)
		}
	}

	teamStats.TotalPoints = fold.totalPoints
	teamStats.GoalDifference = fold.totalGoalDiff
	teamStats.AvgPosition = fold.avgPosition()

	return teamStats, nil
}

// persistPredictions refreshes the user's history row with the latest
// comparison. Failures are a logged side effect, never an aggregation error.
func (s *ComparisonService) persistPredictions(ctx context.Context, userID string, result *ComparisonResult) {
	if s.history == nil || userID == "" {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to encode comparison for history")
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
