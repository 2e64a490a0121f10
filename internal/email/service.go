package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// MaxRetries is how many times a failed send is retried after the first attempt.
const MaxRetries = 2

// Service handles email composition and sending
type Service struct {
	sender    Sender
	from      string
	replyTo   string
	logs      domain.EmailLogStore
	logger    *slog.Logger
	templates map[string]*template.Template
	backoff   time.Duration
}

// Config configures a Service.
type Config struct {
	From    string
	ReplyTo string
	// Backoff is the wait between attempts. Zero means one second.
	Backoff time.Duration
}

// NewService creates a new email service. logs may be nil.
func NewService(sender Sender, cfg Config, logs domain.EmailLogStore, logger *slog.Logger) (*Service, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Service{
		sender:    sender,
		from:      cfg.From,
		replyTo:   cfg.ReplyTo,
		logs:      logs,
		logger:    logger,
		templates: templates,
		backoff:   backoff,
	}, nil
}

var templateFuncs = template.FuncMap{
	"money":    formatCents,
	"zoneName": zoneName,
	"lines":    htmlLines,
}

func parseTemplates() (map[string]*template.Template, error) {
	bodies := []string{
		OrderConfirmationEmail{}.TemplateName(),
		NewOrderNotificationEmail{}.TemplateName(),
		PaymentFailedEmail{}.TemplateName(),
	}

	templates := make(map[string]*template.Template, len(bodies))
	for _, name := range bodies {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse email template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// SendOrderConfirmation sends the buyer's order confirmation.
func (s *Service) SendOrderConfirmation(ctx context.Context, data OrderConfirmationEmail) error {
	return s.send(ctx, []string{data.To}, data.OrderMetadataID, data)
}

// SendNewOrderNotification tells staff about a paid order.
func (s *Service) SendNewOrderNotification(ctx context.Context, data NewOrderNotificationEmail) error {
	return s.send(ctx, data.To, data.OrderMetadataID, data)
}

// SendPaymentFailed tells the buyer their payment did not go through.
func (s *Service) SendPaymentFailed(ctx context.Context, data PaymentFailedEmail) error {
	return s.send(ctx, []string{data.To}, data.OrderMetadataID, data)
}

func (s *Service) send(ctx context.Context, to []string, orderMetadataID string, data EmailTemplate) error {
	htmlBody, textBody, err := s.renderTemplate(data.TemplateName(), data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", data.TemplateType(), err)
	}

	email := &Email{
		To:       to,
		From:     s.from,
		ReplyTo:  s.replyTo,
		Subject:  data.Subject(),
		HTMLBody: htmlBody,
		TextBody: textBody,
		Headers:  map[string]string{tagHeader: data.TemplateType()},
	}

	var messageID string
	attempt := 0
	backoff := retry.WithMaxRetries(MaxRetries, retry.NewConstant(s.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		id, sendErr := s.sender.Send(ctx, email)
		if sendErr != nil {
			s.logger.Warn("email send attempt failed",
				"template", data.TemplateType(),
				"attempt", attempt,
				"error", sendErr,
			)
			return retry.RetryableError(sendErr)
		}
		messageID = id
		return nil
	})

	entry := domain.EmailLog{
		ToEmail:      strings.Join(to, ","),
		TemplateType: data.TemplateType(),
		Status:       "sent",
	}
	if orderMetadataID != "" {
		entry.OrderMetadataID = &orderMetadataID
	}
	if err != nil {
		msg := err.Error()
		entry.Status = "failed"
		entry.ErrorMessage = &msg
	} else if messageID != "" {
		entry.ProviderMessageID = &messageID
	}
	s.record(ctx, entry)

	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", data.TemplateType(), err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, entry domain.EmailLog) {
	if s.logs == nil {
		return
	}
	if err := s.logs.InsertEmailLog(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to record email log",
			"template", entry.TemplateType,
			"error", err,
		)
	}
}

// Helper method to render a template
func (s *Service) renderTemplate(templateName string, data interface{}) (string, string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", "", ErrTemplateNotFound(templateName)
	}

	var htmlBuf bytes.Buffer
	err := tmpl.ExecuteTemplate(&htmlBuf, "email_layout", data)
	if err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	htmlBody := htmlBuf.String()

	plainText := generatePlainText(htmlBody)

	return htmlBody, plainText, nil
}

// formatCents renders minor units as US dollars, e.g. 123450 -> "$1,234.50".
func formatCents(cents int64) string {
	amount := decimal.New(cents, -2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

func zoneName(name string) string {
	if name == "" {
		return "Standard"
	}
	return name
}

func htmlLines(s string) template.HTML {
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = template.HTMLEscapeString(p)
	}
	return template.HTML(strings.Join(parts, "<br>"))
}

// generatePlainText creates a simple plain text version from HTML
func generatePlainText(html string) string {
	text := html

	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = strings.ReplaceAll(text, "<br />", "\n")
	text = strings.ReplaceAll(text, "</p>", "\n\n")
	text = strings.ReplaceAll(text, "</div>", "\n")
	text = strings.ReplaceAll(text, "</h1>", "\n\n")
	text = strings.ReplaceAll(text, "</h2>", "\n\n")
	text = strings.ReplaceAll(text, "</h3>", "\n\n")

	for strings.Contains(text, "<") && strings.Contains(text, ">") {
		start := strings.Index(text, "<")
		end := strings.Index(text, ">")
		if start >= 0 && end > start {
			text = text[:start] + text[end+1:]
		} else {
			break
		}
	}

	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", "\"")

	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
