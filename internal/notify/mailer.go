package notify

import (
	"context"
	"log/slog"
)

// Message is a plain-text e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogMailer struct{}

// Send logs msg and never fails.
func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("mail not sent: no SMTP relay configured",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
