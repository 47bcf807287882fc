// Package stats implements the aggregation engine: team comparisons, win
// predictions, and player performance, all derived from the external data
// provider and wrapped in the two cooperating cache tiers.
package stats

import (
	"context"

	"github.com/matchpulse/footystats/pkg/footballdata"
)

// RecentMatchWindow is the fixed number of finished matches folded per team.
// Not configurable in this design.
const RecentMatchWindow = 10

// fallbackAvgPosition is the average-position value reported when no league
// resolves for a team. It signals "no resolvable league data", bottom of a
// twenty-team table, and is not a computed statistic.
const fallbackAvgPosition = 20

// DataClient is the external data provider contract the engine consumes.
// *footballdata.Client satisfies it.
type DataClient interface {
	GetLastMatchesFinished(ctx context.Context, teamID string, limit int) ([]footballdata.Match, error)
	GetCompetitions(ctx context.Context) ([]footballdata.Competition, error)
	GetStandings(ctx context.Context, competitionID int64) (*footballdata.StandingsResponse, error)
	GetPersonMatches(ctx context.Context, personID string, limit int) ([]footballdata.Match, error)
}

// TeamComparisonStats is the denormalized per-team aggregate. Constructed
// fresh for each aggregation call; only the composed comparison is cached.
type TeamComparisonStats struct {
	TeamID         string   `json:"teamId"`
	TeamName       string   `json:"teamName"`
	PlayedGames    int      `json:"playedGames"`
	WonGames       int      `json:"wonGames"`
	DrawnGames     int      `json:"drawnGames"`
	LostGames      int      `json:"lostGames"`
	GoalsScored    int      `json:"goalsScored"`
	GoalsConceded  int      `json:"goalsConceded"`
	TotalPoints    int      `json:"totalPoints"`
	AvgPosition    float64  `json:"avgPosition"`
	GoalDifference int      `json:"goalDifference"`
	Leagues        []string `json:"leagues"`
}

// ComparisonResult is the side-by-side comparison of two teams. Team1/Team2
// carry the argument order of the call that computed the result; a cache hit
// on the normalized pair key returns that stored orientation.
type ComparisonResult struct {
	Team1 TeamComparisonStats `json:"team1"`
	Team2 TeamComparisonStats `json:"team2"`
}

// standingsFold accumulates standings data across every league a team's
// recent matches touched. A league whose lookup fails or whose team row is
// absent contributes nothing: partial data degrades gracefully.
type standingsFold struct {
	totalPoints   int
	totalPosition int
	totalGoalDiff int
	leagueCount   int
}

// add folds one resolved league row into the accumulator.
func (f *standingsFold) add(position, points, goalDifference int) {
	f.totalPosition += position
	f.totalPoints += points
	f.totalGoalDiff += goalDifference
	f.leagueCount++
}

// avgPosition returns the mean position across resolved leagues, or the
// fallback when none resolved.
func (f *standingsFold) avgPosition() float64 {
	if f.leagueCount == 0 {
		return fallbackAvgPosition
	}
	return float64(f.totalPosition) / float64(f.leagueCount)
}
