// Package notify delivers fire-and-forget domain events to members and
// downstream systems. Delivery is best effort: callers log publish failures
// and carry on.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EventBookingReminder   = "booking.reminder"
	EventBookingCreated    = "booking.created"
	EventBookingCancelled  = "booking.cancelled"
	EventMatchScoreUpdated = "match.score_updated"
	EventDepositPending    = "wallet.deposit_pending"
)

type Event struct {
	Type       string            `json:"type"`
	MemberID   int64             `json:"member_id,omitempty"`
	Recipient  string            `json:"-"`
	Subject    string            `json:"subject,omitempty"`
	Message    string            `json:"message"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the structured log. It is the default when
// no broker or mail driver is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: log.With().Str("component", "notify").Logger()}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	evt := p.logger.Info().
		Str("event", event.Type).
		Int64("member_id", event.MemberID).
		Str("subject", event.Subject)
	for k, v := range event.Data {
		evt = evt.Str(k, v)
	}
	evt.Msg(event.Message)
	return nil
}

// Multi fans an event out to every publisher. All publishers are attempted;
// their errors are joined.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publish stamps the event time and sends it through p, logging rather than
// returning failures. A nil publisher drops the event.
func Publish(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", event.Type).Int64("member_id", event.MemberID).Msg("Failed to publish notification")
	}
}
