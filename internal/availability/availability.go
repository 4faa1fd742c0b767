// Package availability decides whether a court interval is free and lists
// bookable slots. Every check uses Overlaps, in Go and in SQL alike.
package availability

import (
	"cmp"
	"context"
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/models"
)

// SlotMinutes is the length of a generated slot.
const SlotMinutes = 60

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching intervals do not overlap.
func Overlaps[T cmp.Ordered](s1, e1, s2, e2 T) bool {
	return s1 < e2 && s2 < e1
}

// Hours are a court's daily operating hours in minutes since midnight.
type Hours struct {
	Opens  int
	Closes int
}

func ParseHours(opens, closes string) (Hours, error) {
	o, err := models.ParseClock(opens)
	if err != nil {
		return Hours{}, err
	}
	c, err := models.ParseClock(closes)
	if err != nil {
		return Hours{}, err
	}
	if o >= c {
		return Hours{}, fmt.Errorf("%w: opening time must be before closing time", models.ErrInvalidInput)
	}
	return Hours{Opens: o, Closes: c}, nil
}

// Contains reports whether [start,end) lies within operating hours.
func (h Hours) Contains(start, end int) bool {
	return start >= h.Opens && end <= h.Closes
}

// IsAvailable reports whether no non-cancelled booking other than
// excludeBookingID overlaps [start,end) on the court and date. Pass 0 to
// exclude nothing.
func IsAvailable(ctx context.Context, q dbgen.Querier, courtID int64, date, start, end string, excludeBookingID int64) (bool, error) {
	count, err := q.CountOverlappingBookings(ctx, dbgen.CountOverlappingBookingsParams{
		CourtID:          courtID,
		BookingDate:      date,
		ExcludeBookingID: excludeBookingID,
		EndTime:          end,
		StartTime:        start,
	})
	if err != nil {
		return false, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return count == 0, nil
}

type Slot struct {
	Start     string `json:"start_time"`
	End       string `json:"end_time"`
	Available bool   `json:"is_available"`
}

// Slots loads the court's bookings for date once and returns a sequence of
// one-hour slots across hours, generated as the caller ranges over it.
func Slots(ctx context.Context, q dbgen.Querier, courtID int64, date string, hours Hours) (iter.Seq[Slot], error) {
	bookings, err := q.ListActiveBookingsForCourtDate(ctx, dbgen.ListActiveBookingsForCourtDateParams{
		CourtID:     courtID,
		BookingDate: date,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return func(yield func(Slot) bool) {
		for start := hours.Opens; start+SlotMinutes <= hours.Closes; start += SlotMinutes {
			slot := Slot{
				Start:     models.FormatClock(start),
				End:       models.FormatClock(start + SlotMinutes),
				Available: true,
			}
			for _, b := range bookings {
				if Overlaps(slot.Start, slot.End, b.StartTime, b.EndTime) {
					slot.Available = false
					break
				}
			}
			if !yield(slot) {
				return
			}
		}
	}, nil
}

// Price charges hourly pro rata for the minutes in [start,end), rounded to cents.
func Price(hourly decimal.Decimal, startMinutes, endMinutes int) decimal.Decimal {
	minutes := decimal.NewFromInt(int64(endMinutes - startMinutes))
	return models.RoundMoney(hourly.Mul(minutes).Div(decimal.NewFromInt(60)))
}
