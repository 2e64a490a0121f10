package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/shipping"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EPAYMENT, http.StatusPaymentRequired},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ETOOLARGE, http.StatusRequestEntityTooLarge},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{domain.ENOTIMPL, http.StatusNotImplemented},
		{domain.EUNAVAILABLE, http.StatusServiceUnavailable},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "not found",
			err:     domain.NotFound("shipping_zone.update", "shipping zone", "z1"),
			status:  http.StatusNotFound,
			message: "shipping zone not found: z1",
		},
		{
			name:    "invalid",
			err:     domain.Invalid("cart.validate", "Cart is empty"),
			status:  http.StatusBadRequest,
			message: "Cart is empty",
		},
		{
			name:    "package coded error",
			err:     shipping.ErrStateRequired,
			status:  http.StatusBadRequest,
			message: "Destination state is required",
		},
		{
			name:    "internal hides details",
			err:     domain.Internal(errors.New("dial tcp 10.0.0.5:5432"), "db.query", "failed"),
			status:  http.StatusInternalServerError,
			message: "An internal error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rec := httptest.NewRecorder()

			ErrorResponse(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.message, body.Error)
			assert.Nil(t, body.Fields)
		})
	}
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rec := httptest.NewRecorder()

	err := domain.NewValidationError("shipping.admin", "fee_cents", "must be >= 0")
	err = domain.AddFieldError(err, "kind", "is required")
	ErrorResponse(rec, req, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "fee_cents must be >= 0; kind is required", body.Error)
	assert.Equal(t, map[string]string{"fee_cents": "must be >= 0", "kind": "is required"}, body.Fields)
}

func TestErrorResponse_LogsValidationFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodPost, "/admin/shipping", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.LoggerContextKey, logger))
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, domain.NewValidationError("shipping.admin", "fee_cents", "must be >= 0"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request rejected", entry["msg"])
	assert.Equal(t, "shipping.admin", entry["op"])
	assert.Equal(t, map[string]any{"fee_cents": "must be >= 0"}, entry["fields"])
}

func TestErrorMessageResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	rec := httptest.NewRecorder()

	ErrorMessageResponse(rec, req, http.StatusInternalServerError, "Failed to load catalog", errors.New("timeout"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to load catalog", decodeError(t, rec).Error)
}
