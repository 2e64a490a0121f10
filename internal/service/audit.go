package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// auditor writes admin audit rows. Failures are logged and never fail the
// admin operation.
type auditor struct {
	store  domain.AuditLogStore
	logger *slog.Logger
}

// record inserts one audit row. details is merged over {"user_email": ...}.
func (a auditor) record(ctx context.Context, action, resourceType, resourceID string, details map[string]any) {
	if a.store == nil {
		return
	}

	admin := domain.AdminFromContext(ctx)
	entry := domain.AuditEntry{
		Action:       action,
		ResourceType: resourceType,
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}

	merged := make(map[string]any, len(details)+1)
	maps.Copy(merged, details)
	if admin != nil {
		entry.UserID = admin.UserID
		merged["user_email"] = admin.Email
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		a.logger.Error("audit details marshal failed", "action", action, "error", err)
		raw = json.RawMessage(`{}`)
	}
	entry.Details = raw

	if err := a.store.InsertAuditLog(context.WithoutCancel(ctx), entry); err != nil {
		a.logger.Error("audit log insert failed", "action", action, "resource_id", resourceID, "error", err)
	}
}

// detailsFromBody decodes a JSON request body into audit details.
func detailsFromBody(body json.RawMessage) map[string]any {
	details := map[string]any{}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &details)
	}
	return details
}

// requireWriter checks that the calling admin may change configuration.
func requireWriter(ctx context.Context) error {
	if domain.AdminFromContext(ctx) == nil {
		return ErrAdminRequired
	}
	if !domain.CanWrite(ctx) {
		return ErrWriteForbidden
	}
	return nil
}
