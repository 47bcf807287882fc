package stats

import "github.com/matchpulse/footystats/pkg/footballdata"

// Upstream winner field values.
const (
	winnerHome = "HOME_TEAM"
	winnerAway = "AWAY_TEAM"
)

// foldMatches accumulates a team's recent match history into a fresh
// TeamComparisonStats. Side detection is plain string equality against the
// match's home/away team id; a match where the queried team is neither side
// contributes nothing. The display name follows last-non-empty-wins
// semantics in fold order, tolerating upstream display-name drift.
func foldMatches(teamID string, matches []footballdata.Match) TeamComparisonStats {
	stats := TeamComparisonStats{TeamID: teamID}

	for _, match := range matches {
		var home bool
		switch teamID {
		case match.HomeTeam.ID:
			home = true
		case match.AwayTeam.ID:
			home = false
		default:
			continue // unrelated or malformed entry
		}

		stats.PlayedGames++

		if home {
			if match.HomeTeam.Name != "" {
				stats.TeamName = match.HomeTeam.Name
			}
			stats.GoalsScored += match.Score.FullTime.Home
			stats.GoalsConceded += match.Score.FullTime.Away
		} else {
			if match.AwayTeam.Name != "" {
				stats.TeamName = match.AwayTeam.Name
			}
			stats.GoalsScored += match.Score.FullTime.Away
			stats.GoalsConceded += match.Score.FullTime.Home
		}

		// Anything other than a recognized winner value is a draw.
		switch match.Score.Winner {
		case winnerHome:
			if home {
				stats.WonGames++
			} else {
				stats.LostGames++
			}
		case winnerAway:
			if home {
				stats.LostGames++
			} else {
				stats.WonGames++
			}
		default:
			stats.DrawnGames++
		}
	}

	return stats
}

// discoverLeagues collects the distinct competition display names referenced
// by the matches, preserving first-seen order. Playing several matches in
// the same league contributes one entry.
func discoverLeagues(matches []footballdata.Match) []string {
	seen := make(map[string]struct{})
	var leagues []string
	for _, match := range matches {
		name := match.Competition.Name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		leagues = append(leagues, name)
	}
	return leagues
}

// findCompetitionID resolves a competition display name to its upstream id
// by linear search, exact and case-sensitive.
func findCompetitionID(competitions []footballdata.Competition, name string) (int64, bool) {
	for _, competition := range competitions {
		if competition.Name == name {
			return competition.ID, true
		}
	}
	return 0, false
}

// findTeamRow searches a standings table for the queried team id.
func findTeamRow(table []footballdata.TableRow, teamID string) (footballdata.TableRow, bool) {
	for _, row := range table {
		if row.Team.ID == teamID {
			return row, true
		}
	}
	return footballdata.TableRow{}, false
}
