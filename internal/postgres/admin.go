package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// AdminStore implements domain.AdminUserStore and domain.AuditLogStore.
type AdminStore struct {
	pool *pgxpool.Pool
}

// Compile-time checks.
var (
	_ domain.AdminUserStore = (*AdminStore)(nil)
	_ domain.AuditLogStore  = (*AdminStore)(nil)
)

// NewAdminStore creates a new AdminStore.
func NewAdminStore(p *pgxpool.Pool) *AdminStore {
	return &AdminStore{pool: p}
}

// GetAdminByEmail looks an admin up case-insensitively.
func (s *AdminStore) GetAdminByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	const q = `
SELECT id::text, email, password_hash, role, created_at
FROM admin_users
WHERE LOWER(email) = LOWER($1)
`
	var (
		u    domain.AdminUser
		role string
	)
	err := s.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, domain.Internal(err, "admin_user.get", "failed to load admin user")
	}
	u.Role = domain.AdminRole(role)
	return &u, nil
}

// CreateAdmin inserts a staff account.
func (s *AdminStore) CreateAdmin(ctx context.Context, email, passwordHash string, role domain.AdminRole) (*domain.AdminUser, error) {
	const q = `
INSERT INTO admin_users (email, password_hash, role)
VALUES ($1, $2, $3)
RETURNING id::text, created_at
`
	u := domain.AdminUser{Email: email, PasswordHash: passwordHash, Role: role}
	if err := s.pool.QueryRow(ctx, q, email, passwordHash, string(role)).Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, mapWriteError(err, "admin_user.create", "admin user")
	}
	return &u, nil
}

// CountAdmins returns the number of staff accounts.
func (s *AdminStore) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&n); err != nil {
		return 0, domain.Internal(err, "admin_user.count", "failed to count admin users")
	}
	return n, nil
}

// InsertAuditLog records an admin action.
func (s *AdminStore) InsertAuditLog(ctx context.Context, entry domain.AuditEntry) error {
	const q = `
INSERT INTO audit_logs (user_id, action, resource_type, resource_id, details)
VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5)
`
	details := entry.Details
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}
	if _, err := s.pool.Exec(ctx, q, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID, []byte(details)); err != nil {
		return mapWriteError(err, "audit_log.insert", "audit log")
	}
	return nil
}

// ListAuditLogs returns the newest entries first.
func (s *AdminStore) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	const q = `
SELECT id::text, COALESCE(user_id::text, ''), action, resource_type, resource_id, details, created_at
FROM audit_logs
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := s.pool.Query(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, domain.Internal(err, "audit_log.list", "failed to list audit logs")
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditEntry, error) {
		var (
			e       domain.AuditEntry
			details []byte
		)
		err := row.Scan(&e.ID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID, &details, &e.CreatedAt)
		e.Details = details
		return e, err
	})
	if err != nil {
		return nil, domain.Internal(err, "audit_log.list", "failed to list audit logs")
	}
	return entries, nil
}
