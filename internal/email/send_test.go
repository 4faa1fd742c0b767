package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeEmailSender struct {
	mu       sync.Mutex
	sent     []Message
	from     []string
	started  chan struct{}
	release  chan struct{}
	ctxErrCh chan error
	failWith error
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{
		started:  make(chan struct{}, 1),
		ctxErrCh: make(chan error, 1),
	}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	return f.SendFrom(ctx, recipient, subject, body, "")
}

func (f *fakeEmailSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.release != nil {
		<-f.release
	}
	select {
	case f.ctxErrCh <- ctx.Err():
	default:
	}
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, Message{Subject: subject, Body: body})
	f.from = append(f.from, sender)
	return nil
}

func waitForResult(t *testing.T, ch <-chan error) error {
	t.Helper()

	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for email send")
		return nil
	}
}

func TestSendAsync_DetachesFromRequestCancellation(t *testing.T) {
	sender := newFakeEmailSender()
	sender.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := SendAsync(ctx, sender, "member@test.com", Message{Subject: "Subject", Body: "Body"}, "club@test.com", nil)

	<-sender.started
	cancel()
	close(sender.release)

	if err := waitForResult(t, done); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}
	if err := <-sender.ctxErrCh; err != nil {
		t.Fatalf("expected send context to survive request cancellation, got %v", err)
	}
	if len(sender.from) != 1 || sender.from[0] != "club@test.com" {
		t.Fatalf("unexpected sender override %v", sender.from)
	}
}

func TestSendAsync_ReportsFailure(t *testing.T) {
	sender := newFakeEmailSender()
	sender.failWith = errors.New("throttled")

	done := SendAsync(context.Background(), sender, "member@test.com", Message{Subject: "S", Body: "B"}, "", nil)
	if err := waitForResult(t, done); err == nil || err.Error() != "throttled" {
		t.Fatalf("expected throttled error, got %v", err)
	}
}

func TestSendAsync_SkipsEmptyRecipient(t *testing.T) {
	sender := newFakeEmailSender()

	done := SendAsync(context.Background(), sender, "   ", Message{Subject: "S", Body: "B"}, "", nil)
	if err, ok := <-done; ok || err != nil {
		t.Fatalf("expected closed channel without result, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no sends, got %d", len(sender.sent))
	}
}

func TestBuildBookingReminder(t *testing.T) {
	msg := BuildBookingReminder(BookingDetails{
		MemberName: "Alex",
		CourtName:  "Court 3",
		Date:       "2025-06-02",
		TimeRange:  "14:00 - 15:30",
	})

	if msg.Subject != "Reminder: Court 3 tomorrow at 14:00" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{"Hi Alex,", "Court: Court 3", "Date: 2025-06-02", "Time: 14:00 - 15:30"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestBuildBookingCancellationIncludesRefund(t *testing.T) {
	msg := BuildBookingCancellation(BookingDetails{CourtName: "Court 1", Date: "2025-06-02", TimeRange: "08:00 - 09:00", Amount: "50000.00"})
	if !strings.Contains(msg.Body, "Refunded to your wallet: 50000.00") {
		t.Fatalf("expected refund line, got:\n%s", msg.Body)
	}
}
