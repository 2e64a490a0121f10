package middleware

import (
	"net/http"

	"github.com/Fletcher15478/Ecomm/internal/domain"
)

// WithClientIP returns middleware that extracts the real client IP address from the request
// and stores it in the context as the caller identity. It checks proxy headers
// (X-Forwarded-For, X-Real-IP) before falling back to RemoteAddr.
//
// Note: In production, ensure your reverse proxy is configured to set these headers
// and that direct access to the application is not possible, as these headers can be spoofed.
func WithClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := domain.NewContextWithClientID(r.Context(), GetClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientKey returns the caller identity stored by WithClientIP, falling back
// to reading the request headers directly.
func ClientKey(r *http.Request) string {
	if id := domain.ClientIDFromContext(r.Context()); id != "unknown" {
		return id
	}
	return GetClientIP(r)
}
