package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Fletcher15478/Ecomm/internal/auth"
	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// RequireAdmin authenticates staff with HTTP Basic credentials checked
// against admin_users. Any role passes; the identity is stored in context.
func RequireAdmin(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok || strings.TrimSpace(email) == "" {
				respondUnauthorized(w, r)
				return
			}

			identity, err := authenticator.Authenticate(r.Context(), email, password)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					GetLogger(r.Context()).Info("admin authentication failed", "email", email)
					respondUnauthorized(w, r)
					return
				}
				respondInternalError(w, r, err)
				return
			}

			ctx := domain.NewContextWithAdmin(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects admins whose role is not one of roles with 403.
// Must run after RequireAdmin.
func RequireRole(roles ...domain.AdminRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := domain.AdminFromContext(r.Context())
			if admin == nil {
				respondUnauthorized(w, r)
				return
			}

			for _, role := range roles {
				if admin.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondForbidden(w, r)
		})
	}
}
