package ttlcache

import "strconv"

// PairKey builds the normalized cache key for an unordered team pair. The
// two identifiers are compared numerically and the smaller one is placed
// first, so (86,65) and (65,86) map to the identical key. Non-numeric
// identifiers fall back to a lexicographic comparison.
//
// Normalization is the caller's responsibility: the cache itself is
// key-type-agnostic and stores whatever string it is handed.
func PairKey(team1ID, team2ID string) string {
	a, errA := strconv.ParseInt(team1ID, 10, 64)
	b, errB := strconv.ParseInt(team2ID, 10, 64)

	swap := false
	if errA == nil && errB == nil {
		swap = b < a
	} else {
		swap = team2ID < team1ID
	}

	if swap {
		return team2ID + ":" + team1ID
	}
	return team1ID + ":" + team2ID
}
