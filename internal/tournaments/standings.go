package tournaments

import (
	"context"
	"slices"
	"strconv"
	"strings"

	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

// Standing is one side's record across the tournament's finished matches.
type Standing struct {
	Players           []int64 `json:"players"`
	MatchesPlayed     int     `json:"matches_played"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	Draws             int     `json:"draws"`
	PointsFor         int64   `json:"points_for"`
	PointsAgainst     int64   `json:"points_against"`
	PointDifferential int64   `json:"point_differential"`
}

type teamStats struct {
	Standing
	key                 string
	headToHeadWins      map[string]int
	headToHeadPointDiff map[string]int64
}

// Standings ranks every side that appears in a fully drawn match. Sides are
// ordered by wins, then head-to-head wins and point differential within a
// group tied on wins, then by lowest player ID.
func (b *Bracket) Standings(ctx context.Context, tournamentID int64) ([]Standing, error) {
	matches, err := b.Matches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return calculateStandings(matches), nil
}

func calculateStandings(matches []dbgen.Match) []Standing {
	teams := make(map[string]*teamStats)
	entry := func(players []int64) *teamStats {
		key := teamKey(players)
		stats, ok := teams[key]
		if !ok {
			stats = &teamStats{
				Standing:            Standing{Players: players},
				key:                 key,
				headToHeadWins:      make(map[string]int),
				headToHeadPointDiff: make(map[string]int64),
			}
			teams[key] = stats
		}
		return stats
	}

	for _, m := range matches {
		side1 := sidePlayers(m.Team1Player1ID.Int64, m.Team1Player2ID.Int64)
		side2 := sidePlayers(m.Team2Player1ID.Int64, m.Team2Player2ID.Int64)
		// Later knockout rounds have no sides until earlier rounds finish.
		if !m.Team1Player1ID.Valid || !m.Team2Player1ID.Valid {
			continue
		}
		t1, t2 := entry(side1), entry(side2)
		if m.Status != models.MatchFinished || !m.Team1Score.Valid || !m.Team2Score.Valid {
			continue
		}
		record(t1, t2, m.Team1Score.Int64, m.Team2Score.Int64)
		record(t2, t1, m.Team2Score.Int64, m.Team1Score.Int64)
	}

	ordered := make([]*teamStats, 0, len(teams))
	for _, team := range teams {
		ordered = append(ordered, team)
	}
	slices.SortStableFunc(ordered, func(a, b *teamStats) int {
		if a.Wins != b.Wins {
			return b.Wins - a.Wins
		}
		return comparePlayers(a.Players, b.Players)
	})
	sortByTiebreakers(ordered)

	standings := make([]Standing, 0, len(ordered))
	for _, team := range ordered {
		standings = append(standings, team.Standing)
	}
	return standings
}

func record(team, opponent *teamStats, scored, conceded int64) {
	team.MatchesPlayed++
	team.PointsFor += scored
	team.PointsAgainst += conceded
	team.PointDifferential = team.PointsFor - team.PointsAgainst
	switch {
	case scored > conceded:
		team.Wins++
		team.headToHeadWins[opponent.key]++
	case scored < conceded:
		team.Losses++
	default:
		team.Draws++
	}
	team.headToHeadPointDiff[opponent.key] += scored - conceded
}

func sortByTiebreakers(ordered []*teamStats) {
	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Wins == ordered[start].Wins {
			end++
		}
		if end-start > 1 {
			group := ordered[start:end]
			members := make(map[string]struct{}, len(group))
			for _, team := range group {
				members[team.key] = struct{}{}
			}
			slices.SortStableFunc(group, func(a, b *teamStats) int {
				if d := headToHeadWins(b, members) - headToHeadWins(a, members); d != 0 {
					return d
				}
				if a.PointDifferential != b.PointDifferential {
					if a.PointDifferential > b.PointDifferential {
						return -1
					}
					return 1
				}
				diffA, diffB := headToHeadPointDiff(a, members), headToHeadPointDiff(b, members)
				if diffA != diffB {
					if diffA > diffB {
						return -1
					}
					return 1
				}
				return comparePlayers(a.Players, b.Players)
			})
		}
		start = end
	}
}

func headToHeadWins(team *teamStats, group map[string]struct{}) int {
	total := 0
	for opponent, wins := range team.headToHeadWins {
		if _, ok := group[opponent]; ok {
			total += wins
		}
	}
	return total
}

func headToHeadPointDiff(team *teamStats, group map[string]struct{}) int64 {
	var total int64
	for opponent, diff := range team.headToHeadPointDiff {
		if _, ok := group[opponent]; ok {
			total += diff
		}
	}
	return total
}

// sidePlayers returns the non-zero player IDs in ascending order.
func sidePlayers(ids ...int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func teamKey(players []int64) string {
	parts := make([]string, len(players))
	for i, id := range players {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, "+")
}

func comparePlayers(a, b []int64) int {
	return slices.Compare(a, b)
}
