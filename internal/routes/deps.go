package routes

import (
	"net/http"

	"github.com/Fletcher15478/Ecomm/internal/auth"
	"github.com/Fletcher15478/Ecomm/internal/handler/admin"
	"github.com/Fletcher15478/Ecomm/internal/handler/storefront"
	"github.com/Fletcher15478/Ecomm/internal/router"
)

// StorefrontDeps contains dependencies for storefront routes
type StorefrontDeps struct {
	CheckoutHandler *storefront.CheckoutHandler
	ShippingHandler *storefront.ShippingHandler
	CatalogHandler  *storefront.CatalogHandler

	// CheckoutRateLimit guards checkout. It is built once so /checkout and
	// /api/checkout share one budget per client.
	CheckoutRateLimit router.Middleware
}

// AdminDeps contains dependencies for admin routes
type AdminDeps struct {
	Authenticator *auth.Authenticator

	ShippingHandler *admin.ShippingHandler
	CatalogHandler  *admin.CatalogHandler
	LogHandler      *admin.LogHandler
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	SquareHandler http.Handler
}
