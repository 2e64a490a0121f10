// Package domain provides core storefront types, store interfaces, coded
// errors, and context helpers.
//
// Context helpers centralize request-scoped data access so services can read
// the authenticated staff identity without importing the HTTP layer.
package domain

import (
	"context"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// adminContextKey stores the authenticated staff identity in context.
	adminContextKey contextKey = iota

	// clientIDContextKey stores the caller identity used for rate limiting.
	clientIDContextKey
)

// --- Admin Context Helpers ---

// NewContextWithAdmin returns a new context with the admin identity attached.
func NewContextWithAdmin(ctx context.Context, admin *AdminIdentity) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// AdminFromContext retrieves the admin identity from context.
// Returns nil if no admin is present.
func AdminFromContext(ctx context.Context) *AdminIdentity {
	admin, _ := ctx.Value(adminContextKey).(*AdminIdentity)
	return admin
}

// CanWrite returns true if the admin in context may change configuration.
func CanWrite(ctx context.Context) bool {
	admin := AdminFromContext(ctx)
	return admin != nil && admin.Role.CanWrite()
}

// --- Client Identity Helpers ---

// NewContextWithClientID returns a new context carrying the caller identity.
func NewContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

// ClientIDFromContext retrieves the caller identity.
// Returns "unknown" when none was recorded.
func ClientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDContextKey).(string); ok && id != "" {
		return id
	}
	return "unknown"
}
