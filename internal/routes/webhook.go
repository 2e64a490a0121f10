package routes

import (
	"net/http"

	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/router"
)

// RegisterWebhookRoutes registers all webhook routes.
// These routes handle incoming webhooks from external services.
//
// Note: Webhook routes do NOT have authentication middleware.
// The handler verifies the Square HMAC signature itself.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.WithAlias(apiPrefix).Handle(http.MethodPost, "/webhooks/square", deps.SquareHandler,
		middleware.Timeout(middleware.DefaultTimeout))
}
