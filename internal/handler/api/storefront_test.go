package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinohrad/shop/internal/catalog"
	"github.com/vinohrad/shop/internal/settings"
)

func newStorefrontHandler(t *testing.T) *StorefrontHandler {
	t.Helper()

	sale := decimal.NewFromFloat(7.50)
	cat, err := catalog.NewStaticStore([]catalog.Product{
		{ID: "frankovka-2022", Title: "Frankovka modrá 2022", Category: "red", RegularPrice: decimal.NewFromFloat(8.90)},
		{ID: "rose-2024", Title: "Rosé Frankovka 2024", Category: "rose", RegularPrice: decimal.NewFromFloat(9.90), SalePrice: &sale},
	})
	require.NoError(t, err)

	return NewStorefrontHandler(cat, settings.NewStaticStore(settings.Defaults()))
}

func TestListProducts(t *testing.T) {
	h := newStorefrontHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	h.ListProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Products []productView `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.Len(t, payload.Products, 2)

	byID := make(map[string]productView, len(payload.Products))
	for _, p := range payload.Products {
		byID[p.ID] = p
	}

	regular := byID["frankovka-2022"]
	assert.Nil(t, regular.SalePrice)
	assert.True(t, regular.CurrentPrice.Equal(decimal.NewFromFloat(8.90)))

	onSale := byID["rose-2024"]
	require.NotNil(t, onSale.SalePrice)
	assert.True(t, onSale.CurrentPrice.Equal(decimal.NewFromFloat(7.50)))
}

func TestCheckoutOptions(t *testing.T) {
	t.Run("lists methods and countries", func(t *testing.T) {
		h := newStorefrontHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/checkout/options", nil)
		rec := httptest.NewRecorder()
		h.CheckoutOptions(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var payload struct {
			ShippingMethods []shippingOptionView `json:"shippingMethods"`
			PaymentMethods  []paymentOptionView  `json:"paymentMethods"`
			Countries       []string             `json:"countries"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		assert.Len(t, payload.ShippingMethods, 3)
		assert.Len(t, payload.PaymentMethods, 3)
		assert.Contains(t, payload.Countries, "SK")

		// Default locale is Slovak.
		assert.Equal(t, "Dobierka", paymentName(payload.PaymentMethods, "cod"))
	})

	t.Run("localizes payment names by query parameter", func(t *testing.T) {
		h := newStorefrontHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/checkout/options?locale=en", nil)
		rec := httptest.NewRecorder()
		h.CheckoutOptions(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var payload struct {
			PaymentMethods []paymentOptionView `json:"paymentMethods"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		assert.Equal(t, "Cash on delivery", paymentName(payload.PaymentMethods, "cod"))
	})

	t.Run("hides disabled payment methods", func(t *testing.T) {
		shipping, payment, countries := settings.Defaults()
		for i := range payment {
			if payment[i].ID == "cod" {
				payment[i].Enabled = false
			}
		}
		cat, err := catalog.NewStaticStore(nil)
		require.NoError(t, err)
		h := NewStorefrontHandler(cat, settings.NewStaticStore(shipping, payment, countries))

		req := httptest.NewRequest(http.MethodGet, "/api/checkout/options", nil)
		rec := httptest.NewRecorder()
		h.CheckoutOptions(rec, req)

		var payload struct {
			PaymentMethods []paymentOptionView `json:"paymentMethods"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		assert.Len(t, payload.PaymentMethods, 2)
		assert.Empty(t, paymentName(payload.PaymentMethods, "cod"))
	})
}

func paymentName(methods []paymentOptionView, id string) string {
	for _, m := range methods {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}
