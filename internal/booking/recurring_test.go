package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/testutil"
)

func TestPlanSkipsConflictsAndChargesEachDay(t *testing.T) {
	manager, database, _ := newTestManager(t)
	planner := NewPlanner(manager, 90)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000", Tier: models.TierGold})
	blocker := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000"})
	court := testutil.CreateCourt(t, database, "100")
	ctx := context.Background()

	if _, err := manager.Create(ctx, CreateParams{MemberID: blocker.ID, CourtID: court.ID, Date: "2030-06-05", Start: "19:30", End: "20:30"}); err != nil {
		t.Fatalf("blocking booking: %v", err)
	}

	result, err := planner.Plan(ctx, RecurringParams{
		MemberID:  member.ID,
		CourtID:   court.ID,
		StartDate: "2030-06-03",
		EndDate:   "2030-06-16",
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
		Start:     "19:00",
		End:       "20:00",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(result.Created) != 3 {
		t.Fatalf("created %d bookings, want 3", len(result.Created))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Date != "2030-06-05" {
		t.Fatalf("skipped = %+v, want 2030-06-05", result.Skipped)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("700")) {
		t.Fatalf("balance = %s, want 700", got)
	}

	txs := transactionsOf(t, database, member.ID)
	if len(txs) != 3 {
		t.Fatalf("expected one payment per booking, got %d", len(txs))
	}
	for _, tx := range txs {
		if !strings.HasPrefix(tx.Description, "Recurring booking - "+court.Name+" on ") {
			t.Fatalf("unexpected description %q", tx.Description)
		}
	}
}

func TestPlanStopsPayingWhenFundsRunOut(t *testing.T) {
	manager, database, _ := newTestManager(t)
	planner := NewPlanner(manager, 90)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "250", Tier: models.TierVIP})
	court := testutil.CreateCourt(t, database, "100")

	result, err := planner.Plan(context.Background(), RecurringParams{
		MemberID:  member.ID,
		CourtID:   court.ID,
		StartDate: "2030-06-03",
		EndDate:   "2030-06-16",
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
		Start:     "07:00",
		End:       "08:00",
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(result.Created) != 2 || len(result.Skipped) != 2 {
		t.Fatalf("created=%d skipped=%d, want 2 and 2", len(result.Created), len(result.Skipped))
	}
	if !strings.Contains(result.Skipped[0].Reason, "insufficient funds") {
		t.Fatalf("unexpected skip reason %q", result.Skipped[0].Reason)
	}
}

func TestPlanRejections(t *testing.T) {
	manager, database, _ := newTestManager(t)
	planner := NewPlanner(manager, 30)
	basic := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000"})
	diamond := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000", Tier: models.TierDiamond})
	broke := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "0", Tier: models.TierDiamond})
	court := testutil.CreateCourt(t, database, "100")
	ctx := context.Background()

	base := RecurringParams{
		CourtID:   court.ID,
		StartDate: "2030-06-03",
		EndDate:   "2030-06-16",
		Weekdays:  []time.Weekday{time.Friday},
		Start:     "12:00",
		End:       "13:00",
	}

	tests := []struct {
		name   string
		mutate func(*RecurringParams)
		want   error
	}{
		{name: "basic_tier", mutate: func(p *RecurringParams) { p.MemberID = basic.ID }, want: models.ErrTierNotAllowed},
		{name: "range_too_long", mutate: func(p *RecurringParams) { p.MemberID = diamond.ID; p.EndDate = "2030-08-03" }, want: models.ErrRecurringRangeTooLong},
		{name: "no_weekdays", mutate: func(p *RecurringParams) { p.MemberID = diamond.ID; p.Weekdays = nil }, want: models.ErrInvalidInput},
		{name: "inverted_range", mutate: func(p *RecurringParams) { p.MemberID = diamond.ID; p.EndDate = "2030-06-01" }, want: models.ErrInvalidInput},
		{name: "nothing_bookable", mutate: func(p *RecurringParams) { p.MemberID = broke.ID }, want: models.ErrNoRecurringInstances},
		{name: "outside_hours", mutate: func(p *RecurringParams) { p.MemberID = diamond.ID; p.Start = "05:00"; p.End = "06:30" }, want: models.ErrOutsideOperatingHours},
		{name: "inverted_window", mutate: func(p *RecurringParams) { p.MemberID = diamond.ID; p.Start = "13:00"; p.End = "12:00" }, want: models.ErrInvalidTimeRange},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			params := base
			test.mutate(&params)
			if _, err := planner.Plan(ctx, params); !errors.Is(err, test.want) {
				t.Fatalf("Plan() error = %v, want %v", err, test.want)
			}
		})
	}
}
