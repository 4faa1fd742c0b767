package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/testutil"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{name: "identical", s1: "14:00", e1: "15:00", s2: "14:00", e2: "15:00", want: true},
		{name: "contained", s1: "14:00", e1: "15:30", s2: "14:30", e2: "15:00", want: true},
		{name: "partial", s1: "14:00", e1: "15:00", s2: "14:59", e2: "16:00", want: true},
		{name: "touching_after", s1: "14:00", e1: "15:00", s2: "15:00", e2: "16:00", want: false},
		{name: "touching_before", s1: "14:00", e1: "15:00", s2: "13:00", e2: "14:00", want: false},
		{name: "disjoint", s1: "08:00", e1: "09:00", s2: "10:00", e2: "11:00", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Overlaps(test.s1, test.e1, test.s2, test.e2); got != test.want {
				t.Fatalf("Overlaps(%s,%s,%s,%s) = %t, want %t", test.s1, test.e1, test.s2, test.e2, got, test.want)
			}
			if got := Overlaps(test.s2, test.e2, test.s1, test.e1); got != test.want {
				t.Fatalf("Overlaps is not symmetric for %s", test.name)
			}
		})
	}
}

func TestPrice(t *testing.T) {
	hourly := decimal.NewFromInt(50000)
	start, _ := models.ParseClock("14:00")
	end, _ := models.ParseClock("15:30")

	if got := Price(hourly, start, end); !got.Equal(decimal.NewFromInt(75000)) {
		t.Fatalf("Price() = %s, want 75000", got)
	}
	if got := Price(decimal.RequireFromString("10"), 0, 20); !got.Equal(decimal.RequireFromString("3.33")) {
		t.Fatalf("Price() = %s, want 3.33", got)
	}
}

func TestParseHours(t *testing.T) {
	hours, err := ParseHours("06:00", "22:00")
	if err != nil {
		t.Fatalf("ParseHours() error = %v", err)
	}
	if !hours.Contains(360, 420) || hours.Contains(330, 390) || hours.Contains(1290, 1350) {
		t.Fatalf("Contains() gave wrong answers for %+v", hours)
	}
	if _, err := ParseHours("22:00", "06:00"); err == nil {
		t.Fatalf("expected inverted hours to fail")
	}
}

func insertBooking(t *testing.T, q *dbgen.Queries, memberID, courtID int64, date, start, end, status string) dbgen.Booking {
	t.Helper()

	now := time.Now().UTC()
	b, err := q.CreateBooking(context.Background(), dbgen.CreateBookingParams{
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
		t.Fatalf("insert booking: %v", err)
	}
	return b
}

func TestIsAvailable(t *testing.T) {
	database := testutil.NewTestDB(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{})
	court := testutil.CreateCourt(t, database, "50000")
	q := database.Queries
	ctx := context.Background()
	date := "2025-06-01"

	booked := insertBooking(t, q, member.ID, court.ID, date, "14:00", "15:30", models.BookingStatusConfirmed)
	insertBooking(t, q, member.ID, court.ID, date, "16:00", "17:00", models.BookingStatusCancelled)

	tests := []struct {
		name       string
		start, end string
		exclude    int64
		want       bool
	}{
		{name: "inside", start: "14:30", end: "15:00", want: false},
		{name: "straddling", start: "13:30", end: "14:30", want: false},
		{name: "adjacent", start: "15:30", end: "16:00", want: true},
		{name: "cancelled_ignored", start: "16:00", end: "17:00", want: true},
		{name: "self_excluded", start: "14:00", end: "15:30", exclude: booked.ID, want: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := IsAvailable(ctx, q, court.ID, date, test.start, test.end, test.exclude)
			if err != nil {
				t.Fatalf("IsAvailable() error = %v", err)
			}
			if got != test.want {
				t.Fatalf("IsAvailable(%s-%s) = %t, want %t", test.start, test.end, got, test.want)
			}
		})
	}

	other, err := IsAvailable(ctx, q, court.ID, "2025-06-02", "14:00", "15:00", 0)
	if err != nil || !other {
		t.Fatalf("expected other date to be free, got %t, %v", other, err)
	}
}

func TestSlots(t *testing.T) {
	database := testutil.NewTestDB(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{})
	court := testutil.CreateCourt(t, database, "100")
	insertBooking(t, database.Queries, member.ID, court.ID, "2025-06-01", "07:30", "08:30", models.BookingStatusPending)

	hours, _ := ParseHours("06:00", "10:00")
	seq, err := Slots(context.Background(), database.Queries, court.ID, "2025-06-01", hours)
	if err != nil {
		t.Fatalf("Slots() error = %v", err)
	}

	var got []Slot
	for slot := range seq {
		got = append(got, slot)
	}
	want := []Slot{
		{Start: "06:00", End: "07:00", Available: true},
		{Start: "07:00", End: "08:00", Available: false},
		{Start: "08:00", End: "09:00", Available: false},
		{Start: "09:00", End: "10:00", Available: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Slots() mismatch (-want +got):\n%s", diff)
	}

	count := 0
	for range seq {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected early break to stop iteration")
	}
}
