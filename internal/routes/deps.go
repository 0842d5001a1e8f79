package routes

import (
	"net/http"

	"github.com/vinohrad/shop/internal/handler/api"
)

// APIDeps contains dependencies for checkout API routes
type APIDeps struct {
	// Checkout (validation, card payment intents, cash orders)
	CheckoutHandler *api.CheckoutHandler

	// Storefront data (product listing, checkout options)
	StorefrontHandler *api.StorefrontHandler
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}
