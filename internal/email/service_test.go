package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

func TestGeneratePlainText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
		excludes []string
	}{
		{
			name:     "simple paragraph",
			html:     "<p>Hello, World!</p>",
			contains: []string{"Hello, World!"},
			excludes: []string{"<p>", "</p>"},
		},
		{
			name:     "line breaks",
			html:     "Line 1<br>Line 2<br/>Line 3<br />Line 4",
			contains: []string{"Line 1", "Line 2", "Line 3", "Line 4"},
			excludes: []string{"<br>", "<br/>", "<br />"},
		},
		{
			name:     "headings",
			html:     "<h1>Title</h1><h2>Subtitle</h2><h3>Section</h3>",
			contains: []string{"Title", "Subtitle", "Section"},
			excludes: []string{"<h1>", "</h1>", "<h2>", "</h2>", "<h3>", "</h3>"},
		},
		{
			name:     "nested tags",
			html:     "<div><p><strong>Bold text</strong> and <em>italic</em></p></div>",
			contains: []string{"Bold text", "and", "italic"},
			excludes: []string{"<div>", "<p>", "<strong>", "<em>"},
		},
		{
			name:     "HTML entities",
			html:     "Price: $10 &amp; shipping &nbsp; included &lt;$5&gt; &quot;free&quot;",
			contains: []string{"Price: $10 & shipping", "included <$5>", "\"free\""},
			excludes: []string{"&amp;", "&nbsp;", "&lt;", "&gt;", "&quot;"},
		},
		{
			name:     "links stripped",
			html:     `<a href="https://example.com">Click here</a>`,
			contains: []string{"Click here"},
			excludes: []string{"<a", "href", "</a>"},
		},
		{
			name:     "empty content",
			html:     "",
			contains: []string{},
			excludes: []string{},
		},
		{
			name: "email template structure",
			html: `
				<div class="email-content">
					<h2>Welcome!</h2>
					<p>Thank you for signing up.</p>
					<p>Click <a href="https://example.com/verify">here</a> to verify.</p>
				</div>
			`,
			contains: []string{"Welcome!", "Thank you for signing up", "here", "to verify"},
			excludes: []string{"<div", "<h2>", "<p>", "<a href"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := generatePlainText(tt.html)

			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("generatePlainText() result should contain %q, got: %q", want, result)
				}
			}

			for _, exclude := range tt.excludes {
				if strings.Contains(result, exclude) {
					t.Errorf("generatePlainText() result should not contain %q, got: %q", exclude, result)
				}
			}
		})
	}
}

func TestGeneratePlainText_WhitespaceHandling(t *testing.T) {
	html := `
		<p>   Line with spaces   </p>
		<p></p>
		<p>Another line</p>
	`

	result := generatePlainText(html)

	// Should not have empty lines (they get filtered)
	lines := strings.Split(result, "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" && line != "" {
			t.Error("generatePlainText() should not have blank lines with only whitespace")
		}
	}

	// Should contain the actual content
	if !strings.Contains(result, "Line with spaces") {
		t.Error("generatePlainText() should contain trimmed content")
	}
	if !strings.Contains(result, "Another line") {
		t.Error("generatePlainText() should contain 'Another line'")
	}
}

// =============================================================================
// Mock implementations
// =============================================================================

type fakeSender struct {
	mu       sync.Mutex
	failures int
	sent     []*Email
	attempts int
}

func (f *fakeSender) Send(_ context.Context, email *Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failures {
		return "", errors.New("connection reset")
	}
	f.sent = append(f.sent, email)
	return "msg-1", nil
}

type fakeEmailLogs struct {
	mu   sync.Mutex
	logs []domain.EmailLog
}

func (f *fakeEmailLogs) InsertEmailLog(_ context.Context, log domain.EmailLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeEmailLogs) ListEmailLogs(_ context.Context, _ int) ([]domain.EmailLog, error) {
	return f.logs, nil
}

func newTestService(t *testing.T, sender Sender, logs domain.EmailLogStore) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(sender, Config{
		From:    "Millie's <orders@example.com>",
		ReplyTo: "support@example.com",
		Backoff: time.Millisecond,
	}, logs, logger)
	require.NoError(t, err)
	return svc
}

func sampleBreakdown() domain.ShippingBreakdown {
	return domain.ShippingBreakdown{
		Allowed:       true,
		ZoneName:      "West",
		Subtotal:      2500,
		HeatSurcharge: 500,
		Total:         3000,
		Currency:      "USD",
	}
}

// =============================================================================
// Service tests
// =============================================================================

func TestService_SendOrderConfirmation(t *testing.T) {
	sender := &fakeSender{}
	logs := &fakeEmailLogs{}
	svc := newTestService(t, sender, logs)

	err := svc.SendOrderConfirmation(context.Background(), OrderConfirmationEmail{
		To:              "buyer@example.com",
		OrderID:         "ORD-1",
		OrderMetadataID: "meta-1",
		Items: []OrderLine{
			{Name: "Vanilla Pint", Quantity: 2, PriceCents: 1200, TotalCents: 2400, Note: "extra cold"},
		},
		SubtotalCents: 2400,
		Shipping:      sampleBreakdown(),
		OrderNote:     "Birthday gift",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, []string{"buyer@example.com"}, sent.To)
	assert.Equal(t, "Order Confirmation – ORD-1", sent.Subject)
	assert.Equal(t, "support@example.com", sent.ReplyTo)
	assert.Equal(t, TemplateOrderConfirmation, sent.Headers[tagHeader])
	assert.Contains(t, sent.HTMLBody, "Vanilla Pint")
	assert.Contains(t, sent.HTMLBody, "extra cold")
	assert.Contains(t, sent.HTMLBody, "Heat surcharge: $5.00")
	assert.NotContains(t, sent.HTMLBody, "Ice packs")
	assert.Contains(t, sent.HTMLBody, "Shipping total: $30.00")
	assert.Contains(t, sent.HTMLBody, "Grand total: $54.00")
	assert.Contains(t, sent.TextBody, "Birthday gift")

	require.Len(t, logs.logs, 1)
	entry := logs.logs[0]
	assert.Equal(t, "sent", entry.Status)
	assert.Equal(t, TemplateOrderConfirmation, entry.TemplateType)
	require.NotNil(t, entry.OrderMetadataID)
	assert.Equal(t, "meta-1", *entry.OrderMetadataID)
	require.NotNil(t, entry.ProviderMessageID)
	assert.Equal(t, "msg-1", *entry.ProviderMessageID)
}

func TestService_SendNewOrderNotification(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, sender, nil)

	err := svc.SendNewOrderNotification(context.Background(), NewOrderNotificationEmail{
		To:            []string{"staff@example.com", "owner@example.com"},
		CustomerEmail: "buyer@example.com",
		OrderID:       "ORD-2",
		Shipping:      domain.ShippingBreakdown{Allowed: true, Total: 1200, MerchFee: 1200},
		AddressBlock:  "Ann Lee\n1 Main St\nPortland, OR 97201",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, "New order – ORD-2 (buyer@example.com)", sent.Subject)
	assert.Len(t, sent.To, 2)
	assert.Contains(t, sent.HTMLBody, "Shipping (Standard)")
	assert.Contains(t, sent.HTMLBody, "1 Main St<br>Portland, OR 97201")
}

func TestService_SendPaymentFailed(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, sender, nil)

	err := svc.SendPaymentFailed(context.Background(), PaymentFailedEmail{
		To:      "buyer@example.com",
		OrderID: "ORD-3",
		Reason:  "CARD_DECLINED",
	})
	require.NoError(t, err)

	sent := sender.sent[0]
	assert.Equal(t, "Payment Failed – Order ORD-3", sent.Subject)
	assert.Contains(t, sent.TextBody, "We were unable to process payment for order ORD-3")
	assert.Contains(t, sent.TextBody, "Reason: CARD_DECLINED")
}

func TestService_RetriesTransientFailures(t *testing.T) {
	sender := &fakeSender{failures: MaxRetries}
	logs := &fakeEmailLogs{}
	svc := newTestService(t, sender, logs)

	err := svc.SendPaymentFailed(context.Background(), PaymentFailedEmail{To: "buyer@example.com", OrderID: "ORD-4"})
	require.NoError(t, err)

	assert.Equal(t, MaxRetries+1, sender.attempts)
	require.Len(t, logs.logs, 1)
	assert.Equal(t, "sent", logs.logs[0].Status)
}

func TestService_GivesUpAfterMaxRetries(t *testing.T) {
	sender := &fakeSender{failures: 10}
	logs := &fakeEmailLogs{}
	svc := newTestService(t, sender, logs)

	err := svc.SendPaymentFailed(context.Background(), PaymentFailedEmail{To: "buyer@example.com", OrderID: "ORD-5"})
	require.Error(t, err)

	assert.Equal(t, MaxRetries+1, sender.attempts)
	require.Len(t, logs.logs, 1)
	assert.Equal(t, "failed", logs.logs[0].Status)
	require.NotNil(t, logs.logs[0].ErrorMessage)
	assert.Contains(t, *logs.logs[0].ErrorMessage, "connection reset")
	assert.Nil(t, logs.logs[0].OrderMetadataID)
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1250, "$12.50"},
		{123450, "$1,234.50"},
		{100000000, "$1,000,000.00"},
		{-250, "-$2.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCents(tt.cents))
	}
}

// =============================================================================
// Sender tests
// =============================================================================

func TestPostmarkSender_Send(t *testing.T) {
	var gotToken, gotTag string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"Tag":"payment_failed"`) {
			gotTag = "payment_failed"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"a@example.com","MessageID":"pm-123","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	sender := NewPostmarkSender("token").WithEndpoint(srv.URL)
	id, err := sender.Send(context.Background(), &Email{
		To:       []string{"a@example.com"},
		From:     "orders@example.com",
		Subject:  "Hi",
		TextBody: "Hello",
		Headers:  map[string]string{tagHeader: "payment_failed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pm-123", id)
	assert.Equal(t, "token", gotToken)
	assert.Equal(t, "payment_failed", gotTag)
}

func TestPostmarkSender_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	}))
	defer srv.Close()

	sender := NewPostmarkSender("token").WithEndpoint(srv.URL)
	_, err := sender.Send(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "Hi"})
	require.Error(t, err)

	var emailErr *EmailError
	require.ErrorAs(t, err, &emailErr)
	assert.Equal(t, "internal", emailErr.ErrorCode())
	assert.Contains(t, emailErr.Message, "status 422")
}

func TestLogSender_Send(t *testing.T) {
	sender := NewLogSender(slog.New(slog.NewTextHandler(io.Discard, nil)))

	id, err := sender.Send(context.Background(), &Email{To: []string{"a@example.com"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "log-"))

	_, err = sender.Send(context.Background(), &Email{})
	assert.ErrorIs(t, err, ErrNoRecipients)
}
