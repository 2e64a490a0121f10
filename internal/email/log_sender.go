package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender writes emails to the log instead of delivering them.
// Used when neither SMTP nor Postmark is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, email *Email) (string, error) {
	if len(email.To) == 0 {
		return "", ErrNoRecipients
	}
	id := "log-" + uuid.NewString()
	s.logger.Info("email not delivered (no transport configured)",
		"message_id", id,
		"to", email.To,
		"subject", email.Subject,
	)
	return id, nil
}
