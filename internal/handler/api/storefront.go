package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vinohrad/shop/internal/catalog"
	"github.com/vinohrad/shop/internal/handler"
	"github.com/vinohrad/shop/internal/settings"
)

// StorefrontHandler serves the read-only data the storefront needs to
// assemble a checkout: the product listing and the available shipping
// and payment options.
type StorefrontHandler struct {
	catalog  catalog.Store
	settings settings.Store
}

// NewStorefrontHandler creates a storefront data handler.
func NewStorefrontHandler(cat catalog.Store, set settings.Store) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:  cat,
		settings: set,
	}
}

type productView struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Category     string           `json:"category"`
	RegularPrice decimal.Decimal  `json:"regularPrice"`
	SalePrice    *decimal.Decimal `json:"salePrice,omitempty"`
	CurrentPrice decimal.Decimal  `json:"currentPrice"`
}

// ListProducts handles GET /api/products.
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.List()

	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = productView{
			ID:           p.ID,
			Title:        p.Title,
			Category:     p.Category,
			RegularPrice: p.RegularPrice,
			SalePrice:    p.SalePrice,
			CurrentPrice: p.CurrentPrice(),
		}
	}

	handler.JSONResponse(w, http.StatusOK, map[string]interface{}{"products": views})
}

type shippingOptionView struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type paymentOptionView struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// CheckoutOptions handles GET /api/checkout/options.
// Payment method names are localized by the "locale" query parameter.
// Disabled payment methods are not listed.
func (h *StorefrontHandler) CheckoutOptions(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")

	shippingMethods := h.settings.ShippingMethods()
	shipping := make([]shippingOptionView, 0, len(shippingMethods))
	for _, m := range shippingMethods {
		shipping = append(shipping, shippingOptionView{ID: m.ID, Name: m.Name, Price: m.Price})
	}

	paymentMethods := h.settings.PaymentMethods()
	payment := make([]paymentOptionView, 0, len(paymentMethods))
	for _, m := range paymentMethods {
		if !m.Enabled {
			continue
		}
		payment = append(payment, paymentOptionView{
			ID:   m.ID,
			Kind: string(m.Kind),
			Name: m.DisplayName(locale),
		})
	}

	handler.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"shippingMethods": shipping,
		"paymentMethods":  payment,
		"countries":       h.settings.Countries(),
	})
}
