package routes

import (
	"context"

	"github.com/Fletcher15478/Ecomm/internal/domain"
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/router"
	"github.com/Fletcher15478/Ecomm/internal/telemetry"
)

// RegisterAdminRoutes registers the back-office JSON API.
// Every route requires admin credentials; viewers may only read.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(
		middleware.Timeout(middleware.DefaultTimeout),
		middleware.RequireAdmin(deps.Authenticator),
		telemetry.SentryContextMiddleware(sentryAdmin),
	)
	write := admin.Group(middleware.RequireRole(domain.AdminRoleAdmin))

	// Shipping configuration
	admin.Get("/admin/shipping", deps.ShippingHandler.Get)
	write.Post("/admin/shipping", deps.ShippingHandler.Post)

	// Catalog and store product settings
	write.Post("/admin/catalog/items", deps.CatalogHandler.CreateItem)
	write.Delete("/admin/catalog/items/{itemId}", deps.CatalogHandler.DeleteItem)
	admin.Get("/admin/products/settings", deps.CatalogHandler.ListSettings)
	write.Put("/admin/products/settings/{variationId}", deps.CatalogHandler.UpdateSetting)
	write.Put("/admin/products/order", deps.CatalogHandler.SaveOrder)

	// Orders and logs (read-only)
	admin.Get("/admin/orders", deps.LogHandler.Orders)
	admin.Get("/admin/logs/email", deps.LogHandler.EmailLogs)
	admin.Get("/admin/logs/webhooks", deps.LogHandler.WebhookLogs)
	admin.Get("/admin/logs/audit", deps.LogHandler.AuditLogs)
}

// sentryAdmin tags Sentry events with the authenticated staff member.
func sentryAdmin(ctx context.Context) *telemetry.UserInfo {
	identity := domain.AdminFromContext(ctx)
	if identity == nil {
		return nil
	}
	return &telemetry.UserInfo{ID: identity.UserID, Email: identity.Email}
}
