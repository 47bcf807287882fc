package footballdata

// MatchTeam identifies one side of a match. IDs travel as numeric strings
// in match payloads even though competitions use numeric IDs.
type MatchTeam struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FullTime holds the final score of a match.
type FullTime struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Score holds the outcome of a match. Winner is one of "HOME_TEAM",
// "AWAY_TEAM" or "DRAW"; anything else is treated as a draw downstream.
type Score struct {
	Winner   string   `json:"winner"`
	FullTime FullTime `json:"fullTime"`
}

// MatchCompetition is the competition reference embedded in a match.
type MatchCompetition struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Match is a single fixture as returned by the matches endpoints.
type Match struct {
	ID          int64            `json:"id"`
	Competition MatchCompetition `json:"competition"`
	HomeTeam    MatchTeam        `json:"homeTeam"`
	AwayTeam    MatchTeam        `json:"awayTeam"`
	Score       Score            `json:"score"`
	Status      string           `json:"status"`
}

// MatchesResponse is the envelope of the matches endpoints.
type MatchesResponse struct {
	Matches []Match `json:"matches"`
}

// Competition is one entry of the competitions listing.
type Competition struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// CompetitionsResponse is the envelope of the competitions listing.
type CompetitionsResponse struct {
	Competitions []Competition `json:"competitions"`
}

// TableRow is one team's row in a standings table.
type TableRow struct {
	Position       int       `json:"position"`
	Team           MatchTeam `json:"team"`
	Points         int       `json:"points"`
	GoalDifference int       `json:"goalDifference"`
}

// StandingsTable is one table of a standings response. Competitions with
// group stages return several; lookups use the first one.
type StandingsTable struct {
	Stage string     `json:"stage"`
	Type  string     `json:"type"`
	Table []TableRow `json:"table"`
}

// StandingsResponse is the envelope of the standings endpoint.
type StandingsResponse struct {
	Competition Competition      `json:"competition"`
	Standings   []StandingsTable `json:"standings"`
}
