package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

func nullID(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func singles(p1, p2, s1, s2 int64) dbgen.Match {
	return dbgen.Match{
		Team1Player1ID: nullID(p1),
		Team2Player1ID: nullID(p2),
		Team1Score:     nullID(s1),
		Team2Score:     nullID(s2),
		Status:         models.MatchFinished,
	}
}

func TestCalculateStandingsTiebreakers(t *testing.T) {
	matches := []dbgen.Match{
		singles(1, 2, 11, 5),
		singles(2, 3, 11, 9),
		singles(3, 1, 11, 8),
		// Unplayed and placeholder matches do not count.
		{Team1Player1ID: nullID(1), Team2Player1ID: nullID(2), Status: models.MatchScheduled},
		{Round: 2, Status: models.MatchScheduled},
	}

	got := calculateStandings(matches)
	want := []Standing{
		{Players: []int64{1}, MatchesPlayed: 2, Wins: 1, Losses: 1, PointsFor: 19, PointsAgainst: 16, PointDifferential: 3},
		{Players: []int64{3}, MatchesPlayed: 2, Wins: 1, Losses: 1, PointsFor: 20, PointsAgainst: 19, PointDifferential: 1},
		{Players: []int64{2}, MatchesPlayed: 2, Wins: 1, Losses: 1, PointsFor: 16, PointsAgainst: 20, PointDifferential: -4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateStandingsDoublesAndDraws(t *testing.T) {
	matches := []dbgen.Match{
		{
			Team1Player1ID: nullID(4), Team1Player2ID: nullID(2),
			Team2Player1ID: nullID(1), Team2Player2ID: nullID(3),
			Team1Score: nullID(9), Team2Score: nullID(9),
			Status: models.MatchFinished,
		},
	}

	got := calculateStandings(matches)
	if len(got) != 2 {
		t.Fatalf("expected 2 sides, got %d", len(got))
	}
	if !cmp.Equal(got[0].Players, []int64{1, 3}) || !cmp.Equal(got[1].Players, []int64{2, 4}) {
		t.Fatalf("expected sides ordered by lowest player, got %v and %v", got[0].Players, got[1].Players)
	}
	for _, s := range got {
		if s.Draws != 1 || s.Wins != 0 || s.MatchesPlayed != 1 {
			t.Fatalf("expected a recorded draw, got %+v", s)
		}
	}
}

func TestStandingsUnknownTournament(t *testing.T) {
	_, bracket, _, _ := newTestServices(t)
	if _, err := bracket.Standings(context.Background(), 404); !errors.Is(err, models.ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}
