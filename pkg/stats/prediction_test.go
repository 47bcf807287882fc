package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchpulse/footystats/pkg/footballdata"
	"github.com/matchpulse/footystats/pkg/ttlcache"
)

func newPredictionFixture(client DataClient, cache *ttlcache.Cache) *PredictionService {
	comparison := NewComparisonService(client, cache, nil)
	return NewPredictionService(comparison, cache, nil, nil)
}

func TestTeamStrength(t *testing.T) {
	tests := []struct {
		name string
		team TeamComparisonStats
		want float64
	}{
		{
			name: "typical aggregate",
			team: TeamComparisonStats{TotalPoints: 80, GoalDifference: 40, WonGames: 6, DrawnGames: 2, AvgPosition: 2},
			want: 80 + 20 + 18 + 2 - 1 + 1,
		},
		{
			name: "zero aggregate uses the offset only",
			team: TeamComparisonStats{AvgPosition: fallbackAvgPosition},
			want: 1, // -10 floors at 0
		},
		{
			name: "negative differential floors at the offset",
			team: TeamComparisonStats{TotalPoints: 2, GoalDifference: -30, AvgPosition: fallbackAvgPosition},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, teamStrength(tt.team))
		})
	}
}

func TestComposePrediction(t *testing.T) {
	strong := TeamComparisonStats{TeamID: "86", TeamName: "Real Madrid", TotalPoints: 80, WonGames: 6, AvgPosition: 2}
	weak := TeamComparisonStats{TeamID: "81", TeamName: "Barcelona", TotalPoints: 40, WonGames: 3, AvgPosition: 8}

	prediction := composePrediction(strong, weak)

	assert.Equal(t, "Real Madrid", prediction.PredictedWinner)
	assert.Greater(t, prediction.Team1.WinProbability, prediction.Team2.WinProbability)
	assert.InDelta(t, 1.0, prediction.Team1.WinProbability+prediction.Team2.WinProbability, 1e-9)
	assert.Equal(t, strong, prediction.Comparison.Team1)
	assert.Equal(t, weak, prediction.Comparison.Team2)
}

func TestComposePrediction_EqualStrengthIsDraw(t *testing.T) {
	team1 := TeamComparisonStats{TeamID: "86", TeamName: "Real Madrid", TotalPoints: 50, AvgPosition: 4}
	team2 := TeamComparisonStats{TeamID: "81", TeamName: "Barcelona", TotalPoints: 50, AvgPosition: 4}

	prediction := composePrediction(team1, team2)

	assert.Equal(t, "DRAW", prediction.PredictedWinner)
	assert.InDelta(t, 0.5, prediction.Team1.WinProbability, 1e-9)
	assert.InDelta(t, 0.5, prediction.Team2.WinProbability, 1e-9)
}

func TestComposePrediction_WeakerFirstArgument(t *testing.T) {
	weak := TeamComparisonStats{TeamID: "81", TeamName: "Barcelona", TotalPoints: 10, AvgPosition: 15}
	strong := TeamComparisonStats{TeamID: "86", TeamName: "Real Madrid", TotalPoints: 70, AvgPosition: 1}

	prediction := composePrediction(weak, strong)

	assert.Equal(t, "Real Madrid", prediction.PredictedWinner)
	assert.Less(t, prediction.Team1.WinProbability, prediction.Team2.WinProbability)
}

func TestPredictWinner_ComputesAndCaches(t *testing.T) {
	client := &fakeDataClient{
		matchesFn: func(_ context.Context, teamID string, _ int) ([]footballdata.Match, error) {
			if teamID == "86" {
				return tenHomeMatches("86", "Real Madrid", ""), nil
			}
			// All losses for the other side.
			matches := tenHomeMatches("99", "Opponent", "")
			for i := range matches {
				matches[i].AwayTeam = footballdata.MatchTeam{ID: "81", Name: "Barcelona"}
				matches[i].Score = footballdata.Score{Winner: "HOME_TEAM", FullTime: footballdata.FullTime{Home: 2, Away: 0}}
			}
			return matches, nil
		},
	}

	cache := ttlcache.New(time.Hour)
	service := newPredictionFixture(client, cache)

	prediction, err := service.PredictWinner(context.Background(), "", "86", "81")
	require.NoError(t, err)
	assert.Equal(t, "Real Madrid", prediction.PredictedWinner)
	assert.Greater(t, prediction.Team1.Strength, prediction.Team2.Strength)

	callsAfterMiss := client.matchCalls
	again, err := service.PredictWinner(context.Background(), "", "86", "81")
	require.NoError(t, err)
	assert.Same(t, prediction, again)
	assert.Equal(t, callsAfterMiss, client.matchCalls, "memory hit must not reach upstream")
}

func TestPredictWinner_KeySeparateFromComparison(t *testing.T) {
	client := &fakeDataClient{
		matchesFn: func(_ context.Context, teamID string, _ int) ([]footballdata.Match, error) {
			return tenHomeMatches(teamID, "Team "+teamID, ""), nil
		},
	}

	cache := ttlcache.New(time.Hour)
	comparison := NewComparisonService(client, cache, nil)
	prediction := NewPredictionService(comparison, cache, nil, nil)

	_, err := comparison.CompareTeams(context.Background(), "", "86", "81")
	require.NoError(t, err)

	// The shared namespace must not hand the prediction path a comparison.
	_, err = prediction.PredictWinner(context.Background(), "", "86", "81")
	require.NoError(t, err)
	assert.Equal(t, 4, client.matchCalls, "prediction computes under its own key")

	pairKey := ttlcache.PairKey("86", "81")
	_, comparisonCached := cache.GetPrediction(pairKey)
	_, predictionCached := cache.GetPrediction("winner:" + pairKey)
	assert.True(t, comparisonCached)
	assert.True(t, predictionCached)
}

func TestPredictWinner_UpstreamErrorAborts(t *testing.T) {
	upstreamErr := &footballdata.APIError{StatusCode: 429, Class: footballdata.ErrorClassRateLimit}

	client := &fakeDataClient{
		matchesFn: func(context.Context, string, int) ([]footballdata.Match, error) {
			return nil, upstreamErr
		},
	}

	service := newPredictionFixture(client, ttlcache.New(time.Hour))

	_, err := service.PredictWinner(context.Background(), "", "86", "81")
	require.Error(t, err)
	assert.True(t, footballdata.IsTransportError(err))
}

func TestPredictWinner_RefreshesHistory(t *testing.T) {
	client := &fakeDataClient{
		matchesFn: func(_ context.Context, teamID string, _ int) ([]footballdata.Match, error) {
			return tenHomeMatches(teamID, "Team "+teamID, ""), nil
		},
	}

	cache := ttlcache.New(time.Hour)
	store := newCountingStore()
	comparison := NewComparisonService(client, cache, store)
	service := NewPredictionService(comparison, cache, nil, store)

	_, err := service.PredictWinner(context.Background(), "user-7", "86", "81")
	require.NoError(t, err)

	row, err := store.FindByUserID(context.Background(), "user-7")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Contains(t, row.PredictionsJSON, `"predictedWinner"`)
}
