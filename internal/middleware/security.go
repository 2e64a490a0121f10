package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// SecurityHeadersConfig configures security headers
type SecurityHeadersConfig struct {
	ContentSecurityPolicy string
	FrameOptions          string
	ReferrerPolicy        string
	PermissionsPolicy     string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds; 0 omits the header.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	// NoStorePrefixes lists path prefixes whose responses carry order,
	// buyer or staff data and must not be cached.
	NoStorePrefixes []string
}

// DefaultSecurityHeadersConfig returns headers for a JSON-only API
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		FrameOptions:          "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,
		NoStorePrefixes:       []string{"/checkout", "/api/checkout", "/admin/"},
	}
}

// SecurityHeaders adds security headers to all responses
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	static := [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", config.FrameOptions},
		{"Referrer-Policy", config.ReferrerPolicy},
		{"Content-Security-Policy", config.ContentSecurityPolicy},
		{"Permissions-Policy", config.PermissionsPolicy},
	}
	if config.HSTSMaxAge > 0 {
		hsts := "max-age=" + strconv.Itoa(config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		static = append(static, [2]string{"Strict-Transport-Security", hsts})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, kv := range static {
				if kv[1] != "" {
					h.Set(kv[0], kv[1])
				}
			}
			for _, prefix := range config.NoStorePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					h.Set("Cache-Control", "no-store")
					break
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
