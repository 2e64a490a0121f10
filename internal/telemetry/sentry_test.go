package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrubEvent(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		URL:     "https://shop.example/checkout",
		Data:    `{"sourceId":"cnon:card-nonce-ok","buyer":{"email":"a@b.c"}}`,
		Cookies: "session=abc",
		Headers: map[string]string{
			"Authorization":                 "Bearer token",
			"Cookie":                        "session=abc",
			"X-Square-Hmacsha256-Signature": "sig",
			"User-Agent":                    "curl/8",
		},
	}}

	got := scrubEvent(event)

	require.NotNil(t, got)
	assert.Empty(t, got.Request.Data)
	assert.Empty(t, got.Request.Cookies)
	assert.Equal(t, map[string]string{"User-Agent": "curl/8"}, got.Request.Headers)
	assert.Equal(t, "https://shop.example/checkout", got.Request.URL)
}

func TestScrubEvent_NoRequest(t *testing.T) {
	assert.Nil(t, scrubEvent(nil))

	event := &sentry.Event{Message: "boom"}
	assert.Same(t, event, scrubEvent(event))
}

func TestInitSentry_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		cfg  SentryConfig
	}{
		{"switched off", SentryConfig{Enabled: false, DSN: "https://key@o0.ingest.sentry.io/0"}},
		{"no dsn", SentryConfig{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flush, err := InitSentry(tt.cfg, logger)
			require.NoError(t, err)
			require.NotNil(t, flush)
			flush()
			assert.False(t, IsEnabled())

			ctx := context.Background()
			spanCtx, finish := StartSpan(ctx, "checkout", "create order")
			assert.Equal(t, ctx, spanCtx)
			finish()

			assert.NotPanics(t, func() {
				CaptureErrorFromContext(ctx, errors.New("boom"), map[string]interface{}{"order_id": "o1"})
			})
		})
	}
}

func TestSentryMiddleware_DisabledPassesThrough(t *testing.T) {
	enabled.Store(false)

	var called bool
	h := SentryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, sentry.GetHubFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHTTPTransport_DisabledDelegates(t *testing.T) {
	enabled.Store(false)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &HTTPTransport{Transport: http.DefaultTransport}}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}
