package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const sendTimeout = 5 * time.Second

// EmailSender is the delivery backend. SESClient implements it; tests use fakes.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
	SendFrom(ctx context.Context, recipient, subject, body, sender string) error
}

// SendAsync delivers message in the background. The send keeps the values of
// ctx but not its cancellation, so a finished request does not abort it.
// The returned channel yields the send result once and is then closed.
func SendAsync(ctx context.Context, client EmailSender, recipient string, message Message, sender string, logger *zerolog.Logger) <-chan error {
	done := make(chan error, 1)
	recipient = strings.TrimSpace(recipient)
	if client == nil || recipient == "" || message.Subject == "" || message.Body == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		if ctx == nil {
			ctx = context.Background()
		}
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		err := client.SendFrom(sendCtx, recipient, message.Subject, message.Body, sender)
		if logger != nil {
			if err != nil {
				logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send email")
			} else {
				logger.Debug().Str("recipient", recipient).Str("subject", message.Subject).Msg("Email sent")
			}
		}
		done <- err
	}()
	return done
}
