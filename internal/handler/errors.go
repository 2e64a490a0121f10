package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/telemetry"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.ENOTIMPL:
		return http.StatusNotImplemented
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes err as {"error": message} with the status for its code.
// Internal errors are logged, reported, and shown with a generic message.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)
	logError(r, err, code, status)

	body := errorBody{Error: domain.ErrorMessage(err)}
	if fields := domain.GetValidationFields(err); fields != nil {
		body.Fields = fields
	}
	WriteJSON(w, r, status, body)
}

// ErrorMessageResponse writes a fixed message for err, whatever its code.
// Used where the route defines its own failure message.
func ErrorMessageResponse(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		logError(r, err, domain.ErrorCode(err), status)
	}
	WriteJSON(w, r, status, errorBody{Error: message})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.GetLogger(r.Context()).Error("failed to encode response", "error", err)
	}
}

func logError(r *http.Request, err error, code string, status int) {
	logger := middleware.GetLogger(r.Context())
	attrs := []any{
		"error", err,
		"code", code,
		"status", status,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}
	if domain.IsValidationError(err) {
		attrs = append(attrs, "fields", domain.GetValidationFields(err))
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
		telemetry.CaptureErrorFromContext(r.Context(), err, map[string]interface{}{"code": code})
		return
	}
	logger.Info("request rejected", attrs...)
}
