package tournaments

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/lockmap"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/notify"
)

const (
	firstMatchAt          = 8 * time.Hour
	matchSpacing          = time.Hour
	roundRobinMatchesADay = 8
)

// team holds the member IDs playing on one side of a match.
type team []int64

type plannedMatch struct {
	Round int64
	Team1 team // nil until earlier rounds are decided
	Team2 team
	At    time.Time
}

type Bracket struct {
	db        *db.DB
	publisher notify.Publisher
	locks     *lockmap.Map
	now       func() time.Time
	logger    zerolog.Logger
}

func NewBracket(database *db.DB, opts Options) *Bracket {
	opts = opts.withDefaults()
	return &Bracket{
		db:        database,
		publisher: opts.Publisher,
		locks:     opts.Locks,
		now:       opts.Now,
		logger:    log.With().Str("component", "bracket").Logger(),
	}
}

// Generate replaces the tournament's matches with a fresh schedule built from
// a shuffle of the confirmed registrations and marks the tournament Ongoing.
// rng is the only randomness source so callers control reproducibility.
func (b *Bracket) Generate(ctx context.Context, tournamentID int64, rng *rand.Rand) ([]dbgen.Match, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	unlock := b.locks.Lock(tournamentLockKey(tournamentID))
	defer unlock()

	var matches []dbgen.Match
	err := b.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		tournament, err := loadTournament(ctx, q, tournamentID)
		if err != nil {
			return err
		}
		registrations, err := q.ListConfirmedRegistrations(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list confirmed registrations: %w", err)
		}
		if len(registrations) < 2 {
			return models.ErrNotEnoughParticipants
		}
		start, err := models.ParseDate(tournament.StartDate)
		if err != nil {
			return fmt.Errorf("tournament start date: %w", err)
		}

		if _, err := q.DeleteMatchesByTournament(ctx, tournamentID); err != nil {
			return fmt.Errorf("clear matches: %w", err)
		}

		players := make([]int64, len(registrations))
		for i, reg := range registrations {
			players[i] = reg.MemberID
		}
		rng.Shuffle(len(players), func(i, j int) {
			players[i], players[j] = players[j], players[i]
		})

		teams := buildTeams(players, models.TeamSize(tournament.Format))
		if len(teams) < 2 {
			return models.ErrNotEnoughParticipants
		}

		var planned []plannedMatch
		if models.IsKnockout(tournament.Format) {
			planned = planKnockout(teams, start)
		} else {
			planned = planRoundRobin(teams, start)
		}

		now := b.now()
		matches = make([]dbgen.Match, 0, len(planned))
		for _, p := range planned {
			match, err := q.CreateMatch(ctx, dbgen.CreateMatchParams{
				TournamentID:   tournamentID,
				Round:          p.Round,
				Team1Player1ID: player(p.Team1, 0),
				Team1Player2ID: player(p.Team1, 1),
				Team2Player1ID: player(p.Team2, 0),
				Team2Player2ID: player(p.Team2, 1),
				ScheduledTime:  p.At,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return fmt.Errorf("insert match: %w", err)
			}
			matches = append(matches, match)
		}

		return q.UpdateTournamentStatus(ctx, dbgen.UpdateTournamentStatusParams{
			Status:    models.TournamentOngoing,
			UpdatedAt: now,
			ID:        tournamentID,
		})
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info().
		Int64("tournament_id", tournamentID).
		Int("matches", len(matches)).
		Msg("Bracket generated")
	return matches, nil
}

// buildTeams packs consecutive players into teams of size. Players that do
// not fill a whole team are left out.
func buildTeams(players []int64, size int) []team {
	teams := make([]team, 0, len(players)/size)
	for i := 0; i+size <= len(players); i += size {
		teams = append(teams, team(players[i:i+size]))
	}
	return teams
}

func player(t team, idx int) sql.NullInt64 {
	if idx >= len(t) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t[idx], Valid: true}
}

// planKnockout pairs consecutive teams in round one. An odd team out gets no
// match. Later rounds halve the match count and are placeholders scheduled a
// day apart, with teams filled in once results are known.
func planKnockout(teams []team, start time.Time) []plannedMatch {
	day := start.Add(firstMatchAt)
	planned := make([]plannedMatch, 0, len(teams))
	for i := 0; i+1 < len(teams); i += 2 {
		planned = append(planned, plannedMatch{
			Round: 1,
			Team1: teams[i],
			Team2: teams[i+1],
			At:    day.Add(time.Duration(i/2) * matchSpacing),
		})
	}

	matchesInRound := len(teams) / 2
	for round := int64(2); matchesInRound/2 >= 1; round++ {
		matchesInRound /= 2
		day = day.AddDate(0, 0, 1)
		for i := 0; i < matchesInRound; i++ {
			planned = append(planned, plannedMatch{
				Round: round,
				At:    day.Add(time.Duration(i) * matchSpacing),
			})
		}
	}
	return planned
}

// planRoundRobin gives every pair of teams one match using the circle method,
// then lays the matches out hourly from 08:00, eight a day.
func planRoundRobin(teams []team, start time.Time) []plannedMatch {
	working := make([]team, len(teams), len(teams)+1)
	copy(working, teams)
	if len(working)%2 == 1 {
		working = append(working, nil)
	}

	rounds := len(working) - 1
	planned := make([]plannedMatch, 0, len(teams)*(len(teams)-1)/2)
	for round := 0; round < rounds; round++ {
		for i := 0; i < len(working)/2; i++ {
			home, away := working[i], working[len(working)-1-i]
			if home == nil || away == nil {
				continue
			}
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			idx := len(planned)
			day := start.AddDate(0, 0, idx/roundRobinMatchesADay).Add(firstMatchAt)
			planned = append(planned, plannedMatch{
				Round: int64(round + 1),
				Team1: home,
				Team2: away,
				At:    day.Add(time.Duration(idx%roundRobinMatchesADay) * matchSpacing),
			})
		}
		rotateTeams(working)
	}
	return planned
}

func rotateTeams(teams []team) {
	if len(teams) <= 2 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}
