package routes

import (
	"github.com/Fletcher15478/Ecomm/internal/middleware"
	"github.com/Fletcher15478/Ecomm/internal/router"
)

// apiPrefix is the alias prefix the storefront client also calls.
const apiPrefix = "/api"

// RegisterStorefrontRoutes registers the public JSON endpoints used by the
// storefront, each under its bare path and its /api alias.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	small := middleware.MaxBodySize(middleware.SmallMaxBodySize)

	checkout := []router.Middleware{small}
	if deps.CheckoutRateLimit != nil {
		checkout = append(checkout, deps.CheckoutRateLimit)
	}
	checkout = append(checkout, middleware.Timeout(middleware.CheckoutTimeout))

	quote := []router.Middleware{small, middleware.Timeout(middleware.ShortTimeout)}
	listing := middleware.Timeout(middleware.DefaultTimeout)

	api := r.WithAlias(apiPrefix)
	api.Post("/checkout", deps.CheckoutHandler.ServeHTTP, checkout...)
	api.Post("/shipping", deps.ShippingHandler.ServeHTTP, quote...)
	api.Get("/catalog", deps.CatalogHandler.ServeHTTP, listing)
}
