package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

const defaultMaxRecurringDays = 90

type RecurringParams struct {
	MemberID  int64
	CourtID   int64
	StartDate string
	EndDate   string
	Weekdays  []time.Weekday
	Start     string
	End       string
	Notes     string
}

// SkippedDay records a matching day on which no booking was made.
type SkippedDay struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

type RecurringResult struct {
	Created []dbgen.Booking `json:"created"`
	Skipped []SkippedDay    `json:"skipped"`
}

// Planner expands a recurring request into one booking per matching day.
// Each day is booked and charged on its own, so one day failing does not
// undo the others.
type Planner struct {
	manager *Manager
	maxDays int
}

func NewPlanner(manager *Manager, maxDays int) *Planner {
	if maxDays <= 0 {
		maxDays = defaultMaxRecurringDays
	}
	return &Planner{manager: manager, maxDays: maxDays}
}

// Plan books every day in [StartDate, EndDate] whose weekday is listed.
// Days that conflict or cannot be paid for are reported in Skipped; Plan
// fails only when nothing at all was booked. If a storage error stops the
// loop, the days already booked stay booked and are returned in Created.
func (p *Planner) Plan(ctx context.Context, params RecurringParams) (RecurringResult, error) {
	from, err := models.ParseDate(params.StartDate)
	if err != nil {
		return RecurringResult{}, err
	}
	to, err := models.ParseDate(params.EndDate)
	if err != nil {
		return RecurringResult{}, err
	}
	if to.Before(from) {
		return RecurringResult{}, fmt.Errorf("%w: end date must not be before start date", models.ErrInvalidInput)
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > p.maxDays {
		return RecurringResult{}, fmt.Errorf("%w: %d days requested, at most %d allowed", models.ErrRecurringRangeTooLong, days, p.maxDays)
	}
	if len(params.Weekdays) == 0 {
		return RecurringResult{}, fmt.Errorf("%w: at least one weekday is required", models.ErrInvalidInput)
	}
	// The time window is the same every day; a bad one fails every day.
	first := CreateParams{Date: params.StartDate, Start: params.Start, End: params.End}
	if _, err := first.window(p.manager.hours); err != nil {
		return RecurringResult{}, err
	}

	member, err := p.manager.db.Queries.GetMemberByID(ctx, params.MemberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RecurringResult{}, models.ErrMemberNotFound
		}
		return RecurringResult{}, fmt.Errorf("load member: %w", err)
	}
	if !models.Tier(member.MembershipTier).AllowsRecurring() {
		return RecurringResult{}, models.ErrTierNotAllowed
	}

	wanted := make(map[time.Weekday]bool, len(params.Weekdays))
	for _, d := range params.Weekdays {
		wanted[d] = true
	}

	logger := log.Ctx(ctx).With().
		Int64("member_id", params.MemberID).
		Int64("court_id", params.CourtID).
		Logger()

	result := RecurringResult{Created: []dbgen.Booking{}, Skipped: []SkippedDay{}}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if !wanted[day.Weekday()] {
			continue
		}
		date := day.Format(models.DateLayout)
		booking, err := p.manager.create(ctx, CreateParams{
			MemberID: params.MemberID,
			CourtID:  params.CourtID,
			Date:     date,
			Start:    params.Start,
			End:      params.End,
			Notes:    params.Notes,
		}, "Recurring booking")
		if err != nil {
			if !isDomainError(err) {
				ids := make([]int64, len(result.Created))
				for i, b := range result.Created {
					ids[i] = b.ID
				}
				logger.Error().Err(err).
					Str("date", date).
					Ints64("created_booking_ids", ids).
					Msg("Recurring booking stopped after partial creation")
				return result, fmt.Errorf("recurring booking stopped at %s after %d bookings: %w", date, len(ids), err)
			}
			logger.Debug().Err(err).Str("date", date).Msg("Skipping recurring booking day")
			result.Skipped = append(result.Skipped, SkippedDay{Date: date, Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, booking)
	}

	if len(result.Created) == 0 {
		return result, models.ErrNoRecurringInstances
	}
	logger.Info().
		Int("created", len(result.Created)).
		Int("skipped", len(result.Skipped)).
		Msg("Recurring booking planned")
	return result, nil
}

func isDomainError(err error) bool {
	for _, category := range []error{
		models.ErrNotFound,
		models.ErrConflict,
		models.ErrPolicyViolation,
		models.ErrInsufficientFunds,
		models.ErrInvalidState,
		models.ErrInvalidInput,
	} {
		if errors.Is(err, category) {
			return true
		}
	}
	return false
}
