package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/pickleclub/internal/email"
)

// EmailPublisher mails booking events to the member they concern. Other event
// types and events without a recipient are ignored.
type EmailPublisher struct {
	client   email.EmailSender
	sender   string
	clubName string
	logger   zerolog.Logger
}

func NewEmailPublisher(client email.EmailSender, sender, clubName string) *EmailPublisher {
	return &EmailPublisher{
		client:   client,
		sender:   sender,
		clubName: clubName,
		logger:   log.With().Str("component", "notify_email").Logger(),
	}
}

// Publish queues the send and returns immediately; delivery failures are logged.
func (p *EmailPublisher) Publish(ctx context.Context, event Event) error {
	if event.Recipient == "" {
		return nil
	}

	details := email.BookingDetails{
		ClubName:   p.clubName,
		MemberName: event.Data["member_name"],
		CourtName:  event.Data["court"],
		Date:       event.Data["date"],
		TimeRange:  event.Data["start_time"] + " - " + event.Data["end_time"],
		Amount:     event.Data["amount"],
	}

	var message email.Message
	switch event.Type {
	case EventBookingReminder:
		message = email.BuildBookingReminder(details)
	case EventBookingCreated:
		message = email.BuildBookingConfirmation(details)
	case EventBookingCancelled:
		message = email.BuildBookingCancellation(details)
	default:
		return nil
	}

	email.SendAsync(ctx, p.client, event.Recipient, message, p.sender, &p.logger)
	return nil
}
