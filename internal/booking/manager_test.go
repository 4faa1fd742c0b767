package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codr1/pickleclub/internal/db"
	dbgen "github.com/codr1/pickleclub/internal/db/generated"
	"github.com/codr1/pickleclub/internal/lockmap"
	"github.com/codr1/pickleclub/internal/models"
	"github.com/codr1/pickleclub/internal/notify"
	"github.com/codr1/pickleclub/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestManager(t *testing.T) (*Manager, *db.DB, *notify.Recorder) {
	t.Helper()

	database := testutil.NewTestDB(t)
	rec := &notify.Recorder{}
	return NewManager(database, Options{Publisher: rec, Locks: lockmap.New()}), database, rec
}

func balanceOf(t *testing.T, database *db.DB, memberID int64) decimal.Decimal {
	t.Helper()

	member, err := database.Queries.GetMemberByID(context.Background(), memberID)
	if err != nil {
		t.Fatalf("load member: %v", err)
	}
	return member.WalletBalance
}

func transactionsOf(t *testing.T, database *db.DB, memberID int64) []dbgen.WalletTransaction {
	t.Helper()

	txs, err := database.Queries.ListWalletTransactionsByMember(context.Background(), memberID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	return txs
}

func TestCreateChargesProRataPrice(t *testing.T) {
	manager, database, rec := newTestManager(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "200000"})
	court := testutil.CreateCourt(t, database, "50000")
	ctx := context.Background()

	booking, err := manager.Create(ctx, CreateParams{
		MemberID: member.ID,
		CourtID:  court.ID,
		Date:     "2030-06-03",
		Start:    "14:00",
		End:      "15:30",
		Notes:    "doubles practice",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booking.Status != models.BookingStatusConfirmed {
		t.Fatalf("status = %s, want Confirmed", booking.Status)
	}
	if !booking.TotalAmount.Equal(dec("75000")) {
		t.Fatalf("amount = %s, want 75000", booking.TotalAmount)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("125000")) {
		t.Fatalf("balance = %s, want 125000", got)
	}

	txs := transactionsOf(t, database, member.ID)
	if len(txs) != 1 {
		t.Fatalf("expected one payment, got %d", len(txs))
	}
	payment := txs[0]
	if payment.Type != models.TxTypePayment || !payment.Amount.Equal(dec("-75000")) {
		t.Fatalf("unexpected payment %+v", payment)
	}
	if payment.Reference != fmt.Sprintf("BOOKING-%d", booking.ID) {
		t.Fatalf("reference = %s", payment.Reference)
	}
	if want := "Court booking - " + court.Name + " on 03/06/2030"; payment.Description != want {
		t.Fatalf("description = %q, want %q", payment.Description, want)
	}
	if len(rec.OfType(notify.EventBookingCreated)) != 1 {
		t.Fatalf("expected a booking.created event")
	}

	_, err = manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "14:30", End: "15:00"})
	if !errors.Is(err, models.ErrSlotConflict) || !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected slot conflict, got %v", err)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("125000")) {
		t.Fatalf("conflicting attempt changed balance to %s", got)
	}
}

func TestConcurrentOverlappingCreatesBookOnce(t *testing.T) {
	manager, database, _ := newTestManager(t)
	court := testutil.CreateCourt(t, database, "50000")
	first := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000000"})
	second := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000000"})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		date := time.Date(2030, 7, 1+i, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		requests := []CreateParams{
			{MemberID: first.ID, CourtID: court.ID, Date: date, Start: "14:00", End: "15:30"},
			{MemberID: second.ID, CourtID: court.ID, Date: date, Start: "14:30", End: "15:00"},
		}

		var wg sync.WaitGroup
		errs := make([]error, len(requests))
		for j, req := range requests {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[j] = manager.Create(ctx, req)
			}()
		}
		wg.Wait()

		succeeded, conflicts := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, models.ErrSlotConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error on %s: %v", date, err)
			}
		}
		if succeeded != 1 || conflicts != 1 {
			t.Fatalf("%s: succeeded=%d conflicts=%d, want 1 and 1", date, succeeded, conflicts)
		}

		active, err := database.Queries.ListActiveBookingsForCourtDate(ctx, dbgen.ListActiveBookingsForCourtDateParams{CourtID: court.ID, BookingDate: date})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(active) != 1 {
			t.Fatalf("%s: expected one active booking, got %d", date, len(active))
		}
	}
}

func TestCreateGates(t *testing.T) {
	manager, database, _ := newTestManager(t)
	ctx := context.Background()
	rich := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000"})
	poor := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "10"})
	court := testutil.CreateCourt(t, database, "100")
	closed := testutil.CreateCourt(t, database, "100")
	if _, err := database.Queries.SetCourtActive(ctx, dbgen.SetCourtActiveParams{IsActive: false, UpdatedAt: time.Now().UTC(), ID: closed.ID}); err != nil {
		t.Fatalf("deactivate court: %v", err)
	}

	tests := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{name: "end_before_start", params: CreateParams{MemberID: rich.ID, CourtID: court.ID, Date: "2030-06-03", Start: "10:00", End: "09:00"}, want: models.ErrInvalidTimeRange},
		{name: "zero_length", params: CreateParams{MemberID: rich.ID, CourtID: court.ID, Date: "2030-06-03", Start: "10:00", End: "10:00"}, want: models.ErrInvalidTimeRange},
		{name: "before_opening", params: CreateParams{MemberID: rich.ID, CourtID: court.ID, Date: "2030-06-03", Start: "05:00", End: "06:30"}, want: models.ErrOutsideOperatingHours},
		{name: "bad_date", params: CreateParams{MemberID: rich.ID, CourtID: court.ID, Date: "03/06/2030", Start: "10:00", End: "11:00"}, want: models.ErrInvalidInput},
		{name: "unknown_member", params: CreateParams{MemberID: 9999, CourtID: court.ID, Date: "2030-06-03", Start: "10:00", End: "11:00"}, want: models.ErrMemberNotFound},
		{name: "unknown_court", params: CreateParams{MemberID: rich.ID, CourtID: 9999, Date: "2030-06-03", Start: "10:00", End: "11:00"}, want: models.ErrCourtNotFound},
		{name: "inactive_court", params: CreateParams{MemberID: rich.ID, CourtID: closed.ID, Date: "2030-06-03", Start: "10:00", End: "11:00"}, want: models.ErrCourtInactive},
		{name: "insufficient_funds", params: CreateParams{MemberID: poor.ID, CourtID: court.ID, Date: "2030-06-03", Start: "10:00", End: "11:00"}, want: models.ErrInsufficientFunds},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := manager.Create(ctx, test.params); !errors.Is(err, test.want) {
				t.Fatalf("Create() error = %v, want %v", err, test.want)
			}
		})
	}

	bookings, err := manager.ListForMember(ctx, poor.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("failed create left %d bookings behind", len(bookings))
	}
	if len(transactionsOf(t, database, poor.ID)) != 0 {
		t.Fatalf("failed create left transactions behind")
	}
}

func TestCancelRefundsOnceAndRejectsSecondCancel(t *testing.T) {
	manager, database, rec := newTestManager(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "500"})
	court := testutil.CreateCourt(t, database, "120")
	ctx := context.Background()

	booking, err := manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "08:00", End: "09:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := manager.Cancel(ctx, booking.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Fatalf("status = %s, want Cancelled", cancelled.Status)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("500")) {
		t.Fatalf("balance after refund = %s, want 500", got)
	}
	txs := transactionsOf(t, database, member.ID)
	if len(txs) != 2 || txs[0].Type != models.TxTypeRefund || txs[0].Reference != fmt.Sprintf("REFUND-%d", booking.ID) {
		t.Fatalf("expected refund as newest transaction, got %+v", txs)
	}

	if _, err := manager.Cancel(ctx, booking.ID); !errors.Is(err, models.ErrBookingAlreadyCancelled) || !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("second cancel: expected ErrBookingAlreadyCancelled, got %v", err)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("500")) {
		t.Fatalf("second cancel changed balance to %s", got)
	}
	if len(transactionsOf(t, database, member.ID)) != 2 {
		t.Fatalf("second cancel wrote a transaction")
	}
	if _, err := manager.Cancel(ctx, 424242); !errors.Is(err, models.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	events := rec.OfType(notify.EventBookingCancelled)
	if len(events) != 1 || events[0].Data["amount"] != "120.00" {
		t.Fatalf("expected one cancellation event with refund amount, got %+v", events)
	}

	// The slot is free again.
	if _, err := manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "08:30", End: "09:00"}); err != nil {
		t.Fatalf("rebooking cancelled slot: %v", err)
	}
}

func TestHoldAndConfirm(t *testing.T) {
	manager, database, _ := newTestManager(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "100"})
	court := testutil.CreateCourt(t, database, "60")
	ctx := context.Background()

	held, err := manager.Hold(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "18:00", End: "19:00"})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if held.Status != models.BookingStatusPending {
		t.Fatalf("status = %s, want Pending", held.Status)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("100")) {
		t.Fatalf("hold charged the wallet: %s", got)
	}

	if _, err := manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "18:30", End: "19:30"}); !errors.Is(err, models.ErrSlotConflict) {
		t.Fatalf("expected the hold to block the slot, got %v", err)
	}

	confirmed, err := manager.ConfirmHold(ctx, held.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != models.BookingStatusConfirmed {
		t.Fatalf("status = %s, want Confirmed", confirmed.Status)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("40")) {
		t.Fatalf("balance = %s, want 40", got)
	}
	if _, err := manager.ConfirmHold(ctx, held.ID); !errors.Is(err, models.ErrBookingNotPending) {
		t.Fatalf("second confirm: expected ErrBookingNotPending, got %v", err)
	}

	// Cancelling a hold that was never confirmed refunds nothing.
	other, err := manager.Hold(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-04", Start: "18:00", End: "19:00"})
	if err != nil {
		t.Fatalf("second hold: %v", err)
	}
	if _, err := manager.Cancel(ctx, other.ID); err != nil {
		t.Fatalf("cancel hold: %v", err)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("40")) {
		t.Fatalf("cancelling a hold changed balance to %s", got)
	}
}

func TestConfirmHoldRejectsExpiredHold(t *testing.T) {
	database := testutil.NewTestDB(t)
	now := time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	manager := NewManager(database, Options{
		HoldTTL: 5 * time.Minute,
		Now:     func() time.Time { return now },
	})
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "100"})
	court := testutil.CreateCourt(t, database, "60")
	ctx := context.Background()

	held, err := manager.Hold(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "18:00", End: "19:00"})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if _, err := manager.ConfirmHold(ctx, held.ID); !errors.Is(err, models.ErrBookingNotPending) {
		t.Fatalf("expected ErrBookingNotPending for an expired hold, got %v", err)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("100")) {
		t.Fatalf("expired hold charged the wallet: %s", got)
	}
	current, err := manager.Get(ctx, held.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Status != models.BookingStatusPending {
		t.Fatalf("status = %s, want Pending", current.Status)
	}
}

func TestCancelAfterOverrideRefundsOnlyWhatWasPaid(t *testing.T) {
	manager, database, _ := newTestManager(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "100000"})
	court := testutil.CreateCourt(t, database, "50000")
	ctx := context.Background()

	// A hold forced to Confirmed was never charged.
	held, err := manager.Hold(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "08:00", End: "09:00"})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, err := manager.UpdateStatus(ctx, held.ID, models.BookingStatusConfirmed); err != nil {
		t.Fatalf("override hold: %v", err)
	}
	if _, err := manager.Cancel(ctx, held.ID); err != nil {
		t.Fatalf("cancel overridden hold: %v", err)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("100000")) {
		t.Fatalf("cancelling an unpaid booking credited the wallet: balance = %s", got)
	}
	if n := len(transactionsOf(t, database, member.ID)); n != 0 {
		t.Fatalf("expected no transactions, got %d", n)
	}

	// A refunded booking revived by staff is not refunded twice.
	booking, err := manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-04", Start: "08:00", End: "09:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := manager.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := manager.UpdateStatus(ctx, booking.ID, models.BookingStatusConfirmed); err != nil {
		t.Fatalf("revive: %v", err)
	}
	if _, err := manager.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("100000")) {
		t.Fatalf("balance = %s, want 100000", got)
	}
	refunds := 0
	for _, tx := range transactionsOf(t, database, member.ID) {
		if tx.Type == models.TxTypeRefund {
			refunds++
		}
	}
	if refunds != 1 {
		t.Fatalf("expected one refund, got %d", refunds)
	}
}

func TestUpdateStatusHasNoWalletEffect(t *testing.T) {
	manager, database, _ := newTestManager(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "300"})
	court := testutil.CreateCourt(t, database, "100")
	ctx := context.Background()

	booking, err := manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "10:00", End: "11:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := manager.UpdateStatus(ctx, booking.ID, models.BookingStatusCancelled); err != nil {
		t.Fatalf("override: %v", err)
	}
	if got := balanceOf(t, database, member.ID); !got.Equal(dec("200")) {
		t.Fatalf("override refunded: balance = %s, want 200", got)
	}
	if len(transactionsOf(t, database, member.ID)) != 1 {
		t.Fatalf("override wrote a transaction")
	}

	if _, err := manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: "2030-06-03", Start: "10:00", End: "11:00"}); err != nil {
		t.Fatalf("rebook: %v", err)
	}
	if _, err := manager.UpdateStatus(ctx, booking.ID, models.BookingStatusConfirmed); !errors.Is(err, models.ErrSlotConflict) {
		t.Fatalf("reviving into a taken slot: expected ErrSlotConflict, got %v", err)
	}
	if _, err := manager.UpdateStatus(ctx, booking.ID, "Archived"); !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCalendar(t *testing.T) {
	manager, database, _ := newTestManager(t)
	member := testutil.CreateMember(t, database, testutil.MemberFixture{Balance: "1000"})
	court := testutil.CreateCourt(t, database, "10")
	ctx := context.Background()

	for _, date := range []string{"2030-06-01", "2030-06-03", "2030-06-09"} {
		if _, err := manager.Create(ctx, CreateParams{MemberID: member.ID, CourtID: court.ID, Date: date, Start: "09:00", End: "10:00"}); err != nil {
			t.Fatalf("create %s: %v", date, err)
		}
	}

	got, err := manager.Calendar(ctx, "2030-06-02", "2030-06-09")
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	var dates []string
	for _, b := range got {
		dates = append(dates, b.BookingDate)
	}
	if strings.Join(dates, ",") != "2030-06-03,2030-06-09" {
		t.Fatalf("calendar dates = %v", dates)
	}
	if _, err := manager.Calendar(ctx, "2030-06-09", "2030-06-01"); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}
}
