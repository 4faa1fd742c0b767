package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

var fixtureSeq atomic.Int64

// NewTestDB opens a migrated SQLite file under t.TempDir and closes it when
// the test ends.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "club.db"))
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// MemberFixture overrides fields of a generated member. Zero values keep the
// generated defaults.
type MemberFixture struct {
	Balance string
	Tier    models.Tier
}

// CreateMember inserts a member with fake identity data.
func CreateMember(t *testing.T, database *db.DB, fixture MemberFixture) dbgen.Member {
	t.Helper()

	balance := decimal.Zero
	if fixture.Balance != "" {
		balance = decimal.RequireFromString(fixture.Balance)
	}
	tier := fixture.Tier
	if tier == "" {
		tier = models.TierBasic
	}

	now := time.Now().UTC()
	member, err := database.Queries.CreateMember(context.Background(), dbgen.CreateMemberParams{
		FullName:       gofakeit.Name(),
		Email:          fmt.Sprintf("%d.%s", fixtureSeq.Add(1), gofakeit.Email()),
		Phone:          sql.NullString{},
		MembershipTier: string(tier),
		WalletBalance:  balance,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return member
}

// CreateCourt inserts an active indoor court with the given hourly price.
func CreateCourt(t *testing.T, database *db.DB, pricePerHour string) dbgen.Court {
	t.Helper()

	now := time.Now().UTC()
	court, err := database.Queries.CreateCourt(context.Background(), dbgen.CreateCourtParams{
		Name:         fmt.Sprintf("Court %d", fixtureSeq.Add(1)),
		CourtType:    "Indoor",
		PricePerHour: decimal.RequireFromString(pricePerHour),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}
	return court
}

// TournamentFixture configures CreateTournament. Zero values get defaults:
// Singles, 16 players, fee 0, Open, starting in a week, deadline in three days.
type TournamentFixture struct {
	Format          string
	MaxParticipants int64
	EntryFee        string
	Status          string
	StartDate       string
	Deadline        time.Time
}

func CreateTournament(t *testing.T, database *db.DB, fixture TournamentFixture) dbgen.Tournament {
	t.Helper()

	now := time.Now().UTC()
	if fixture.Format == "" {
		fixture.Format = models.FormatSingles
	}
	if fixture.MaxParticipants == 0 {
		fixture.MaxParticipants = 16
	}
	if fixture.EntryFee == "" {
		fixture.EntryFee = "0"
	}
	if fixture.Status == "" {
		fixture.Status = models.TournamentOpen
	}
	if fixture.StartDate == "" {
		fixture.StartDate = now.AddDate(0, 0, 7).Format(models.DateLayout)
	}
	if fixture.Deadline.IsZero() {
		fixture.Deadline = now.AddDate(0, 0, 3)
	}
	start, err := models.ParseDate(fixture.StartDate)
	if err != nil {
		t.Fatalf("tournament start date: %v", err)
	}

	tournament, err := database.Queries.CreateTournament(context.Background(), dbgen.CreateTournamentParams{
		Name:                 gofakeit.Company() + " Open",
		Format:               fixture.Format,
		MaxParticipants:      fixture.MaxParticipants,
		EntryFee:             decimal.RequireFromString(fixture.EntryFee),
		StartDate:            fixture.StartDate,
		EndDate:              start.AddDate(0, 0, 3).Format(models.DateLayout),
		RegistrationDeadline: fixture.Deadline,
		Status:               fixture.Status,
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return tournament
}

// CreateBooking inserts a booking row directly, with no ledger entry.
func CreateBooking(t *testing.T, database *db.DB, memberID, courtID int64, date, start, end, status string) dbgen.Booking {
	t.Helper()

	now := time.Now().UTC()
	booking, err := database.Queries.CreateBooking(context.Background(), dbgen.CreateBookingParams{
		MemberID:    memberID,
		CourtID:     courtID,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return booking
}
