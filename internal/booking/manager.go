// Package booking creates, confirms and cancels court bookings. Payment and
// refund ledger entries are written in the same transaction as the booking
// row they belong to.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/availability"
	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/lockmap"
	"github.com/codr1/pickleclub/internal/metrics"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/notify"
	"github.com/codr1/pickleclub/internal/wallet"
)

const displayDateLayout = "02/01/2006"

type Options struct {
	Hours     availability.Hours
	Publisher notify.Publisher
	Metrics   *metrics.Metrics
	// Locks must be shared with the wallet ledger so member keys serialize
	// across both.
	Locks *lockmap.Map
	// HoldTTL is how long a Pending hold can still be confirmed.
	HoldTTL time.Duration
	Now     func() time.Time
}

type Manager struct {
	db        *db.DB
	hours     availability.Hours
	publisher notify.Publisher
	metrics   *metrics.Metrics
	locks     *lockmap.Map
	holdTTL   time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

func NewManager(database *db.DB, opts Options) *Manager {
	if opts.Hours == (availability.Hours{}) {
		opts.Hours = availability.Hours{Opens: 6 * 60, Closes: 22 * 60}
	}
	if opts.Locks == nil {
		opts.Locks = lockmap.New()
	}
	if opts.HoldTTL <= 0 {
		opts.HoldTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{
		db:        database,
		hours:     opts.Hours,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		locks:     opts.Locks,
		holdTTL:   opts.HoldTTL,
		now:       opts.Now,
		logger:    log.With().Str("component", "booking").Logger(),
	}
}

type CreateParams struct {
	MemberID int64
	CourtID  int64
	Date     string // YYYY-MM-DD
	Start    string // HH:MM
	End      string // HH:MM
	Notes    string
}

type window struct {
	date       time.Time
	start, end int
}

func (p CreateParams) window(hours availability.Hours) (window, error) {
	date, err := models.ParseDate(p.Date)
	if err != nil {
		return window{}, err
	}
	start, err := models.ParseClock(p.Start)
	if err != nil {
		return window{}, err
	}
	end, err := models.ParseClock(p.End)
	if err != nil {
		return window{}, err
	}
	if end <= start {
		return window{}, models.ErrInvalidTimeRange
	}
	if !hours.Contains(start, end) {
		return window{}, models.ErrOutsideOperatingHours
	}
	return window{date: date, start: start, end: end}, nil
}

func slotLockKey(courtID int64, date string) string {
	return "court:" + strconv.FormatInt(courtID, 10) + ":" + date
}

// Create books a court and charges the member's wallet. The booking is
// Confirmed and its Payment entry commits with it.
func (m *Manager) Create(ctx context.Context, params CreateParams) (dbgen.Booking, error) {
	return m.create(ctx, params, "Court booking")
}

// create runs every gate and the debit inside one immediate transaction.
// label prefixes the Payment description.
func (m *Manager) create(ctx context.Context, params CreateParams, label string) (dbgen.Booking, error) {
	booking, details, err := m.reserve(ctx, params, models.BookingStatusConfirmed, label)
	m.metrics.BookingAttempt(outcome(err))
	if err != nil {
		return dbgen.Booking{}, err
	}

	m.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("member_id", booking.MemberID).
		Int64("court_id", booking.CourtID).
		Str("date", booking.BookingDate).
		Str("start_time", booking.StartTime).
		Str("end_time", booking.EndTime).
		Msg("Booking created")
	m.publish(ctx, notify.EventBookingCreated, booking, details, booking.TotalAmount)
	return booking, nil
}

// Hold reserves the slot as Pending without charging. ConfirmHold refuses
// the hold once it is older than HoldTTL, and the sweeper later releases it.
func (m *Manager) Hold(ctx context.Context, params CreateParams) (dbgen.Booking, error) {
	booking, _, err := m.reserve(ctx, params, models.BookingStatusPending, "")
	m.metrics.BookingAttempt(outcome(err))
	return booking, err
}

type bookingDetails struct {
	member dbgen.Member
	court  dbgen.Court
}

func (m *Manager) reserve(ctx context.Context, params CreateParams, status, label string) (dbgen.Booking, bookingDetails, error) {
	w, err := params.window(m.hours)
	if err != nil {
		return dbgen.Booking{}, bookingDetails{}, err
	}
	date := w.date.Format(models.DateLayout)

	unlockSlot := m.locks.Lock(slotLockKey(params.CourtID, date))
	defer unlockSlot()
	unlockMember := m.locks.Lock(wallet.MemberLockKey(params.MemberID))
	defer unlockMember()

	var (
		booking dbgen.Booking
		details bookingDetails
	)
	err = wallet.WithRetry(ctx, func() error {
		return m.db.RunInTx(ctx, func(txdb *db.DB) error {
			q := txdb.Queries
			var err error
			details, err = loadParticipants(ctx, q, params.MemberID, params.CourtID)
			if err != nil {
				return err
			}

			start, end := models.FormatClock(w.start), models.FormatClock(w.end)
			free, err := availability.IsAvailable(ctx, q, params.CourtID, date, start, end, 0)
			if err != nil {
				return err
			}
			if !free {
				return models.ErrSlotConflict
			}

			amount := availability.Price(details.court.PricePerHour, w.start, w.end)
			if status == models.BookingStatusConfirmed && details.member.WalletBalance.LessThan(amount) {
				return models.ErrInsufficientFunds
			}

			now := m.now()
			booking, err = q.CreateBooking(ctx, dbgen.CreateBookingParams{
				MemberID:    params.MemberID,
				CourtID:     params.CourtID,
				BookingDate: date,
				StartTime:   start,
				EndTime:     end,
				Status:      status,
				TotalAmount: amount,
				Notes:       sql.NullString{String: params.Notes, Valid: params.Notes != ""},
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return fmt.Errorf("insert booking: %w", err)
			}

			if status != models.BookingStatusConfirmed {
				return nil
			}
			_, err = wallet.Apply(ctx, q, wallet.ApplyParams{
				MemberID:    params.MemberID,
				Type:        models.TxTypePayment,
				Amount:      amount.Neg(),
				Description: fmt.Sprintf("%s - %s on %s", label, details.court.Name, w.date.Format(displayDateLayout)),
				Reference:   paymentReference(booking.ID),
				At:          now,
			})
			return err
		})
	})
	if err != nil {
		return dbgen.Booking{}, bookingDetails{}, err
	}
	if status == models.BookingStatusConfirmed {
		m.metrics.WalletTransaction(models.TxTypePayment, models.TxStatusCompleted)
	}
	return booking, details, nil
}

func loadParticipants(ctx context.Context, q dbgen.Querier, memberID, courtID int64) (bookingDetails, error) {
	member, err := q.GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bookingDetails{}, models.ErrMemberNotFound
		}
		return bookingDetails{}, fmt.Errorf("load member: %w", err)
	}
	if !member.IsActive {
		return bookingDetails{}, models.ErrMemberInactive
	}
	court, err := q.GetCourtByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bookingDetails{}, models.ErrCourtNotFound
		}
		return bookingDetails{}, fmt.Errorf("load court: %w", err)
	}
	if !court.IsActive {
		return bookingDetails{}, models.ErrCourtInactive
	}
	return bookingDetails{member: member, court: court}, nil
}

// ConfirmHold charges a Pending booking and marks it Confirmed. A hold past
// its TTL is treated as already expired.
func (m *Manager) ConfirmHold(ctx context.Context, bookingID int64) (dbgen.Booking, error) {
	held, err := m.Get(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}

	unlockSlot := m.locks.Lock(slotLockKey(held.CourtID, held.BookingDate))
	defer unlockSlot()
	unlockMember := m.locks.Lock(wallet.MemberLockKey(held.MemberID))
	defer unlockMember()

	var (
		confirmed dbgen.Booking
		details   bookingDetails
	)
	err = wallet.WithRetry(ctx, func() error {
		return m.db.RunInTx(ctx, func(txdb *db.DB) error {
			q := txdb.Queries
			current, err := q.GetBookingByID(ctx, bookingID)
			if err != nil {
				return fmt.Errorf("reload booking: %w", err)
			}
			if current.Status != models.BookingStatusPending {
				return models.ErrBookingNotPending
			}
			now := m.now()
			if !current.CreatedAt.After(now.Add(-m.holdTTL)) {
				return fmt.Errorf("%w: hold expired", models.ErrBookingNotPending)
			}
			details, err = loadParticipants(ctx, q, current.MemberID, current.CourtID)
			if err != nil {
				return err
			}
			if details.member.WalletBalance.LessThan(current.TotalAmount) {
				return models.ErrInsufficientFunds
			}

			confirmed, err = q.ConfirmPendingBooking(ctx, dbgen.ConfirmPendingBookingParams{
				TotalAmount: current.TotalAmount,
				UpdatedAt:   now,
				ID:          current.ID,
			})
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrBookingNotPending
			}
			if err != nil {
				return fmt.Errorf("confirm booking: %w", err)
			}

			date, _ := models.ParseDate(current.BookingDate)
			_, err = wallet.Apply(ctx, q, wallet.ApplyParams{
				MemberID:    current.MemberID,
				Type:        models.TxTypePayment,
				Amount:      current.TotalAmount.Neg(),
				Description: fmt.Sprintf("Court booking - %s on %s", details.court.Name, date.Format(displayDateLayout)),
				Reference:   paymentReference(current.ID),
				At:          now,
			})
			return err
		})
	})
	if err != nil {
		return dbgen.Booking{}, err
	}

	m.metrics.WalletTransaction(models.TxTypePayment, models.TxStatusCompleted)
	m.publish(ctx, notify.EventBookingCreated, confirmed, details, confirmed.TotalAmount)
	return confirmed, nil
}

// Cancel cancels a booking. A Confirmed booking is refunded whatever was
// paid for it and not already refunded.
func (m *Manager) Cancel(ctx context.Context, bookingID int64) (dbgen.Booking, error) {
	existing, err := m.Get(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}

	unlockMember := m.locks.Lock(wallet.MemberLockKey(existing.MemberID))
	defer unlockMember()

	var (
		cancelled dbgen.Booking
		refund    decimal.Decimal
	)
	err = wallet.WithRetry(ctx, func() error {
		return m.db.RunInTx(ctx, func(txdb *db.DB) error {
			q := txdb.Queries
			current, err := q.GetBookingByID(ctx, bookingID)
			if err != nil {
				return fmt.Errorf("reload booking: %w", err)
			}
			if current.Status == models.BookingStatusCancelled {
				return models.ErrBookingAlreadyCancelled
			}

			now := m.now()
			cancelled, err = q.UpdateBookingStatus(ctx, dbgen.UpdateBookingStatusParams{
				Status:    models.BookingStatusCancelled,
				UpdatedAt: now,
				ID:        current.ID,
			})
			if err != nil {
				return fmt.Errorf("cancel booking: %w", err)
			}

			refund = decimal.Zero
			if current.Status != models.BookingStatusConfirmed {
				return nil
			}
			// A status override never charges, so refund only what the
			// ledger shows as paid and not yet returned.
			outstanding, err := unrefunded(ctx, q, current)
			if err != nil {
				return err
			}
			if !outstanding.IsPositive() {
				return nil
			}
			refund = outstanding
			_, err = wallet.Apply(ctx, q, wallet.ApplyParams{
				MemberID:    current.MemberID,
				Type:        models.TxTypeRefund,
				Amount:      refund,
				Description: fmt.Sprintf("Refund for cancelled booking #%d", current.ID),
				Reference:   refundReference(current.ID),
				At:          now,
			})
			return err
		})
	})
	if err != nil {
		return dbgen.Booking{}, err
	}

	if refund.IsPositive() {
		m.metrics.WalletTransaction(models.TxTypeRefund, models.TxStatusCompleted)
	}
	m.logger.Info().
		Int64("booking_id", cancelled.ID).
		Str("refund", refund.StringFixed(2)).
		Msg("Booking cancelled")

	details, err := loadDetailsForEvent(ctx, m.db.Queries, cancelled)
	if err == nil {
		m.publish(ctx, notify.EventBookingCancelled, cancelled, details, refund)
	}
	return cancelled, nil
}

func paymentReference(bookingID int64) string {
	return "BOOKING-" + strconv.FormatInt(bookingID, 10)
}

func refundReference(bookingID int64) string {
	return "REFUND-" + strconv.FormatInt(bookingID, 10)
}

// unrefunded returns the amount charged for booking less any refunds
// already credited against it.
func unrefunded(ctx context.Context, q dbgen.Querier, booking dbgen.Booking) (decimal.Decimal, error) {
	net := decimal.Zero
	for _, ref := range []string{paymentReference(booking.ID), refundReference(booking.ID)} {
		txs, err := q.ListWalletTransactionsByReference(ctx, dbgen.ListWalletTransactionsByReferenceParams{
			MemberID:  booking.MemberID,
			Reference: ref,
		})
		if err != nil {
			return decimal.Zero, fmt.Errorf("load booking ledger: %w", err)
		}
		for _, tx := range txs {
			if tx.Status == models.TxStatusCompleted {
				net = net.Sub(tx.Amount)
			}
		}
	}
	return net, nil
}

// UpdateStatus overrides a booking's status without touching the wallet.
// Reviving a Cancelled booking is refused if the slot has since been taken.
func (m *Manager) UpdateStatus(ctx context.Context, bookingID int64, status string) (dbgen.Booking, error) {
	if !models.ValidBookingStatus(status) {
		return dbgen.Booking{}, models.ErrInvalidStatus
	}
	existing, err := m.Get(ctx, bookingID)
	if err != nil {
		return dbgen.Booking{}, err
	}

	unlockSlot := m.locks.Lock(slotLockKey(existing.CourtID, existing.BookingDate))
	defer unlockSlot()

	var updated dbgen.Booking
	err = m.db.RunInTx(ctx, func(txdb *db.DB) error {
		q := txdb.Queries
		current, err := q.GetBookingByID(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("reload booking: %w", err)
		}
		if current.Status == models.BookingStatusCancelled && status != models.BookingStatusCancelled {
			free, err := availability.IsAvailable(ctx, q, current.CourtID, current.BookingDate, current.StartTime, current.EndTime, current.ID)
			if err != nil {
				return err
			}
			if !free {
				return models.ErrSlotConflict
			}
		}
		updated, err = q.UpdateBookingStatus(ctx, dbgen.UpdateBookingStatusParams{
			Status:    status,
			UpdatedAt: m.now(),
			ID:        current.ID,
		})
		if err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		return nil
	})
	if err != nil {
		return dbgen.Booking{}, err
	}

	m.logger.Info().
		Int64("booking_id", updated.ID).
		Str("from", existing.Status).
		Str("to", updated.Status).
		Msg("Booking status overridden")
	return updated, nil
}

func (m *Manager) Get(ctx context.Context, bookingID int64) (dbgen.Booking, error) {
	booking, err := m.db.Queries.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Booking{}, models.ErrBookingNotFound
		}
		return dbgen.Booking{}, fmt.Errorf("load booking: %w", err)
	}
	return booking, nil
}

// ListForMember returns the member's bookings, newest first.
func (m *Manager) ListForMember(ctx context.Context, memberID int64) ([]dbgen.Booking, error) {
	bookings, err := m.db.Queries.ListBookingsByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list member bookings: %w", err)
	}
	return bookings, nil
}

// Calendar lists every booking dated within [from, to].
func (m *Manager) Calendar(ctx context.Context, from, to string) ([]dbgen.Booking, error) {
	fromDate, err := models.ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := models.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("%w: from must not be after to", models.ErrInvalidInput)
	}
	bookings, err := m.db.Queries.ListBookingsByDateRange(ctx, dbgen.ListBookingsByDateRangeParams{
		FromDate: fromDate.Format(models.DateLayout),
		ToDate:   toDate.Format(models.DateLayout),
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func loadDetailsForEvent(ctx context.Context, q dbgen.Querier, booking dbgen.Booking) (bookingDetails, error) {
	member, err := q.GetMemberByID(ctx, booking.MemberID)
	if err != nil {
		return bookingDetails{}, err
	}
	court, err := q.GetCourtByID(ctx, booking.CourtID)
	if err != nil {
		return bookingDetails{}, err
	}
	return bookingDetails{member: member, court: court}, nil
}

// BookingEvent builds the notification payload describing booking.
func BookingEvent(eventType string, booking dbgen.Booking, member dbgen.Member, court dbgen.Court, amount decimal.Decimal) notify.Event {
	data := map[string]string{
		"booking_id":  strconv.FormatInt(booking.ID, 10),
		"member_name": member.FullName,
		"court":       court.Name,
		"date":        booking.BookingDate,
		"start_time":  booking.StartTime,
		"end_time":    booking.EndTime,
	}
	if amount.IsPositive() {
		data["amount"] = amount.StringFixed(2)
	}
	return notify.Event{
		Type:      eventType,
		MemberID:  member.ID,
		Recipient: member.Email,
		Subject:   court.Name + " on " + booking.BookingDate,
		Message:   fmt.Sprintf("%s %s-%s on %s", court.Name, booking.StartTime, booking.EndTime, booking.BookingDate),
		Data:      data,
	}
}

func (m *Manager) publish(ctx context.Context, eventType string, booking dbgen.Booking, details bookingDetails, amount decimal.Decimal) {
	notify.Publish(ctx, m.publisher, BookingEvent(eventType, booking, details.member, details.court, amount))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, models.ErrPolicyViolation), errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidInput):
		return "rejected"
	default:
		return "error"
	}
}
