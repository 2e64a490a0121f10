package domain

import (
	"context"
	"encoding/json"
	"time"
)

// =============================================================================
// ADMIN USERS
// =============================================================================

// AdminRole controls what an authenticated staff member may do.
type AdminRole string

const (
	AdminRoleAdmin  AdminRole = "admin"
	AdminRoleViewer AdminRole = "viewer"
)

// CanWrite reports whether the role may change configuration.
func (r AdminRole) CanWrite() bool {
	return r == AdminRoleAdmin
}

// AdminIdentity is the authenticated staff member behind an admin request.
type AdminIdentity struct {
	UserID string
	Email  string
	Role   AdminRole
}

// AdminUser is a stored staff account.
type AdminUser struct {
	ID           string
	Email        string
	PasswordHash string
	Role         AdminRole
	CreatedAt    time.Time
}

// Admin user errors.
var (
	ErrAdminNotFound      = &Error{Code: ENOTFOUND, Message: "Admin user not found"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
)

// AdminUserStore persists staff accounts.
type AdminUserStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*AdminUser, error)
	CreateAdmin(ctx context.Context, email, passwordHash string, role AdminRole) (*AdminUser, error)
	CountAdmins(ctx context.Context) (int, error)
}

// =============================================================================
// LOGS
// =============================================================================

// AuditEntry records who changed what from the admin back-office.
type AuditEntry struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   *string         `json:"resource_id"`
	Details      json.RawMessage `json:"details"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AuditLogStore persists audit entries.
type AuditLogStore interface {
	InsertAuditLog(ctx context.Context, entry AuditEntry) error
	ListAuditLogs(ctx context.Context, limit int) ([]AuditEntry, error)
}

// WebhookLog records a received provider webhook.
type WebhookLog struct {
	ID             string          `json:"id"`
	EventType      string          `json:"event_type"`
	Payload        json.RawMessage `json:"payload"`
	SignatureValid bool            `json:"signature_valid"`
	Processed      bool            `json:"processed"`
	ErrorMessage   *string         `json:"error_message"`
	CreatedAt      time.Time       `json:"created_at"`
}

// WebhookLogStore persists webhook logs.
type WebhookLogStore interface {
	InsertWebhookLog(ctx context.Context, log WebhookLog) (string, error)
	MarkWebhookProcessed(ctx context.Context, id string, processed bool, errMsg *string) error
	ListWebhookLogs(ctx context.Context, limit int) ([]WebhookLog, error)
}

// EmailLog records the final outcome of one transactional email.
type EmailLog struct {
	ID                string    `json:"id"`
	ToEmail           string    `json:"to_email"`
	TemplateType      string    `json:"template_type"`
	OrderMetadataID   *string   `json:"order_metadata_id"`
	Status            string    `json:"status"`
	ProviderMessageID *string   `json:"provider_message_id"`
	ErrorMessage      *string   `json:"error_message"`
	CreatedAt         time.Time `json:"created_at"`
}

// EmailLogStore persists email logs.
type EmailLogStore interface {
	InsertEmailLog(ctx context.Context, log EmailLog) error
	ListEmailLogs(ctx context.Context, limit int) ([]EmailLog, error)
}
