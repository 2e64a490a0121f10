package email

import "context"

// Email represents an email message to be sent.
type Email struct {
	To       []string          // Recipient email addresses
	From     string            // Sender address, may include a display name
	ReplyTo  string            // Optional reply-to address
	Subject  string            // Email subject
	TextBody string            // Plain text body
	HTMLBody string            // HTML body
	Headers  map[string]string // Custom headers (optional)
}

// Sender defines the interface for sending emails.
// Implementations use SMTP, Postmark, or log only.
type Sender interface {
	// Send sends an email message.
	// Returns the message ID from the email provider (if available).
	Send(ctx context.Context, email *Email) (string, error)
}

// tagHeader carries the template type. Postmark sends it as the message tag;
// SMTP passes it through as a header.
const tagHeader = "X-Template-Type"
