package tournaments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/notify"
)

// RecordResult stores the final score and finishes the match. The higher
// score wins; a tie leaves the winner empty. A finished match cannot be
// scored again, and a knockout match waiting on earlier rounds cannot be
// scored at all.
func (b *Bracket) RecordResult(ctx context.Context, matchID, team1Score, team2Score int64) (dbgen.Match, error) {
	if team1Score < 0 || team2Score < 0 {
		return dbgen.Match{}, fmt.Errorf("%w: scores must not be negative", models.ErrInvalidInput)
	}

	q := b.db.Queries
	match, err := q.GetMatchByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Match{}, models.ErrMatchNotFound
		}
		return dbgen.Match{}, fmt.Errorf("load match: %w", err)
	}
	if match.Status == models.MatchFinished {
		return dbgen.Match{}, models.ErrMatchFinished
	}
	if !match.Team1Player1ID.Valid || !match.Team2Player1ID.Valid {
		return dbgen.Match{}, models.ErrMatchNotReady
	}

	var winner sql.NullInt64
	switch {
	case team1Score > team2Score:
		winner = sql.NullInt64{Int64: 1, Valid: true}
	case team2Score > team1Score:
		winner = sql.NullInt64{Int64: 2, Valid: true}
	}

	finished, err := q.RecordMatchResult(ctx, dbgen.RecordMatchResultParams{
		Team1Score: sql.NullInt64{Int64: team1Score, Valid: true},
		Team2Score: sql.NullInt64{Int64: team2Score, Valid: true},
		WinnerTeam: winner,
		UpdatedAt:  b.now(),
		ID:         matchID,
	})
	if err != nil {
		// The update only matches unfinished rows, so losing a race with
		// another scorer surfaces as no rows.
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Match{}, models.ErrMatchFinished
		}
		return dbgen.Match{}, fmt.Errorf("record match result: %w", err)
	}

	b.logger.Info().
		Int64("match_id", finished.ID).
		Int64("tournament_id", finished.TournamentID).
		Int64("team1_score", team1Score).
		Int64("team2_score", team2Score).
		Msg("Match result recorded")
	notify.Publish(ctx, b.publisher, scoreEvent(finished))
	return finished, nil
}

// Matches lists the tournament's matches by round and scheduled time.
func (b *Bracket) Matches(ctx context.Context, tournamentID int64) ([]dbgen.Match, error) {
	if _, err := loadTournament(ctx, b.db.Queries, tournamentID); err != nil {
		return nil, err
	}
	matches, err := b.db.Queries.ListMatchesByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

func scoreEvent(match dbgen.Match) notify.Event {
	data := map[string]string{
		"match_id":      strconv.FormatInt(match.ID, 10),
		"tournament_id": strconv.FormatInt(match.TournamentID, 10),
		"round":         strconv.FormatInt(match.Round, 10),
		"team1_score":   strconv.FormatInt(match.Team1Score.Int64, 10),
		"team2_score":   strconv.FormatInt(match.Team2Score.Int64, 10),
	}
	if match.WinnerTeam.Valid {
		data["winner_team"] = strconv.FormatInt(match.WinnerTeam.Int64, 10)
	}
	return notify.Event{
		Type:    notify.EventMatchScoreUpdated,
		Subject: fmt.Sprintf("Match #%d result", match.ID),
		Message: fmt.Sprintf("Round %d finished %d-%d", match.Round, match.Team1Score.Int64, match.Team2Score.Int64),
		Data:    data,
	}
}
