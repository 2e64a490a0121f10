package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/handler"
)

// Read-only stores behind the orders and logs views.
type (
	OrderLister interface {
		ListRecent(ctx context.Context, limit int) ([]domain.OrderAttempt, error)
	}
	EmailLogLister interface {
		ListEmailLogs(ctx context.Context, limit int) ([]domain.EmailLog, error)
	}
	WebhookLogLister interface {
		ListWebhookLogs(ctx context.Context, limit int) ([]domain.WebhookLog, error)
	}
	AuditLogLister interface {
		ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error)
	}
)

// defaultListLimit applies when ?limit is absent or not a number.
const defaultListLimit = 100

// LogHandler serves GET /admin/orders and GET /admin/logs/*.
type LogHandler struct {
	orders   OrderLister
	emails   EmailLogLister
	webhooks WebhookLogLister
	audit    AuditLogLister
}

// NewLogHandler creates a new orders and logs handler
func NewLogHandler(orders OrderLister, emails EmailLogLister, webhooks WebhookLogLister, audit AuditLogLister) *LogHandler {
	return &LogHandler{orders: orders, emails: emails, webhooks: webhooks, audit: audit}
}

func listLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return defaultListLimit
	}
	return n
}

// serveList writes {key: rows}, with an empty array for no rows.
func serveList[T any](w http.ResponseWriter, r *http.Request, key string, list func(context.Context, int) ([]T, error)) {
	rows, err := list(r.Context(), listLimit(r))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if rows == nil {
		rows = []T{}
	}
	handler.WriteJSON(w, r, http.StatusOK, map[string]any{key: rows})
}

// Orders handles GET /admin/orders
func (h *LogHandler) Orders(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, "orders", h.orders.ListRecent)
}

// EmailLogs handles GET /admin/logs/email
func (h *LogHandler) EmailLogs(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, "logs", h.emails.ListEmailLogs)
}

// WebhookLogs handles GET /admin/logs/webhooks
func (h *LogHandler) WebhookLogs(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, "logs", h.webhooks.ListWebhookLogs)
}

// AuditLogs handles GET /admin/logs/audit
func (h *LogHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, "logs", h.audit.ListAuditLogs)
}
