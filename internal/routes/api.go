package routes

import (
	"github.com/vinohrad/shop/internal/middleware"
	"github.com/vinohrad/shop/internal/router"
)

// RegisterAPIRoutes registers the checkout API consumed by the storefront.
// These routes are unauthenticated; order validation happens server-side
// against the catalog and settings stores.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	bodyLimit := middleware.MaxBodySize(middleware.DefaultMaxBodySize)

	// Storefront data
	r.Get("/api/products", deps.StorefrontHandler.ListProducts)
	r.Get("/api/checkout/options", deps.StorefrontHandler.CheckoutOptions)

	// Checkout
	r.Post("/api/orders/validate", deps.CheckoutHandler.ValidateOrder, bodyLimit)
	r.Post("/api/checkout/payment-intent", deps.CheckoutHandler.CreatePaymentIntent, bodyLimit)
	r.Post("/api/checkout/cash-order", deps.CheckoutHandler.PlaceCashOrder, bodyLimit)
}
