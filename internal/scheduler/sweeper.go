package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/booking"
	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/metrics"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/notify"
)

const (
	sweeperJobName = "booking_sweeper"
	sweepTimeout   = 2 * time.Minute
)

type SweeperOptions struct {
	// PendingTTL is how long an unpaid hold keeps its slot.
	PendingTTL time.Duration
	// Location decides which calendar day counts as tomorrow for reminders.
	Location  *time.Location
	Publisher notify.Publisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Sweeper expires stale holds and sends next-day reminders.
type Sweeper struct {
	db        *db.DB
	ttl       time.Duration
	location  *time.Location
	publisher notify.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    zerolog.Logger

	mu           sync.Mutex
	reminderDate string
	reminded     map[int64]struct{}
}

func NewSweeper(database *db.DB, opts SweeperOptions) *Sweeper {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 5 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Sweeper{
		db:        database,
		ttl:       opts.PendingTTL,
		location:  opts.Location,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		now:       opts.Now,
		logger:    log.With().Str("component", "booking_sweeper").Logger(),
		reminded:  make(map[int64]struct{}),
	}
}

// SweepResult summarizes one tick.
type SweepResult struct {
	Expired  []int64
	Reminded int
}

// RunOnce runs both sweep steps. A failing step is logged and does not stop
// the other.
func (s *Sweeper) RunOnce(ctx context.Context) SweepResult {
	ctx = s.logger.WithContext(ctx)
	now := s.now()

	var result SweepResult
	expired, err := s.expireHolds(ctx, now)
	s.metrics.SweepStep("expire_holds", err)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to expire pending bookings")
	} else {
		result.Expired = expired
		s.metrics.BookingsSwept(len(expired))
		if len(expired) > 0 {
			s.logger.Info().Ints64("booking_ids", expired).Msg("Expired pending bookings")
		}
	}

	reminded, err := s.sendReminders(ctx, now)
	s.metrics.SweepStep("reminders", err)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to send booking reminders")
	}
	result.Reminded = reminded
	return result
}

// expireHolds cancels Pending bookings older than the TTL. Holds never carry
// a ledger entry, so nothing is refunded.
func (s *Sweeper) expireHolds(ctx context.Context, now time.Time) ([]int64, error) {
	ids, err := s.db.Queries.CancelStalePendingBookings(ctx, dbgen.CancelStalePendingBookingsParams{
		Now:    now,
		Cutoff: now.Add(-s.ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("cancel stale pending bookings: %w", err)
	}
	return ids, nil
}

// sendReminders publishes one reminder per Confirmed booking dated tomorrow.
// Bookings already reminded today are skipped, so ticks can run often.
func (s *Sweeper) sendReminders(ctx context.Context, now time.Time) (int, error) {
	tomorrow := now.In(s.location).AddDate(0, 0, 1).Format(models.DateLayout)
	bookings, err := s.db.Queries.ListConfirmedBookingsOnDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("list bookings for %s: %w", tomorrow, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reminderDate != tomorrow {
		s.reminderDate = tomorrow
		s.reminded = make(map[int64]struct{})
	}

	sent := 0
	for _, b := range bookings {
		if _, ok := s.reminded[b.ID]; ok {
			continue
		}
		member, err := s.db.Queries.GetMemberByID(ctx, b.MemberID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("Skipping reminder: member lookup failed")
			continue
		}
		court, err := s.db.Queries.GetCourtByID(ctx, b.CourtID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("booking_id", b.ID).Msg("Skipping reminder: court lookup failed")
			continue
		}
		notify.Publish(ctx, s.publisher, booking.BookingEvent(notify.EventBookingReminder, b, member, court, decimal.Zero))
		s.reminded[b.ID] = struct{}{}
		sent++
	}
	return sent, nil
}

// RegisterSweeper schedules the sweeper on the singleton scheduler.
func RegisterSweeper(sweeper *Sweeper, interval time.Duration) error {
	if sweeper == nil {
		return fmt.Errorf("sweeper is required")
	}
	_, err := AddDurationJob(sweeperJobName, interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		sweeper.RunOnce(ctx)
	})
	return err
}
