package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinohrad/shop/internal/catalog"
	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/settings"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *catalog.StaticStore {
	t.Helper()
	sale := decimal.NewFromFloat(7.50)
	store, err := catalog.NewStaticStore([]catalog.Product{
		{ID: "frankovka-2022", Title: "Frankovka modrá 2022", Category: "red", RegularPrice: decimal.NewFromFloat(8.90)},
		{ID: "rizling-2023", Title: "Rizling rýnsky 2023", Category: "white", RegularPrice: decimal.NewFromFloat(11.50)},
		{ID: "rose-2024", Title: "Rosé 2024", Category: "rose", RegularPrice: decimal.NewFromFloat(9.90), SalePrice: &sale},
	})
	require.NoError(t, err)
	return store
}

func testSettings() *settings.StaticStore {
	return settings.NewStaticStore(settings.Defaults())
}

func testAddress() domain.AddressForm {
	return domain.AddressForm{
		FirstName:  "Jana",
		LastName:   "Nováková",
		Country:    "SK",
		City:       "Bratislava",
		Address1:   "Hlavná 1",
		PostalCode: "81101",
		Phone:      "+421900111222",
		Email:      "jana@example.sk",
	}
}

func testRequest() *domain.OrderRequest {
	return &domain.OrderRequest{
		OrderID: "ord_abc123",
		CartItems: []domain.CartItem{
			{ProductID: "frankovka-2022", Title: "Frankovka modrá 2022", UnitPrice: decimal.NewFromFloat(8.90), Quantity: 2},
		},
		ShippingForm:     testAddress(),
		BillingForm:      testAddress(),
		ShippingMethodID: "courier",
		PaymentMethodID:  "card",
		Locale:           "sk",
	}
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	return NewValidator(testCatalog(t), testSettings(), testLogger())
}

func rejectionFields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	rejections := domain.RejectionsFrom(err)
	require.NotEmpty(t, rejections, "expected a rejection error, got %v", err)
	fields := make([]string, len(rejections))
	for i, r := range rejections {
		fields[i] = r.Field
	}
	return fields
}

func TestValidate(t *testing.T) {
	t.Run("valid request produces snapshot", func(t *testing.T) {
		v := newTestValidator(t)

		order, err := v.Validate(context.Background(), testRequest())
		require.NoError(t, err)

		assert.Equal(t, "ord_abc123", order.OrderID)
		assert.Equal(t, "courier", order.Shipping.MethodID)
		assert.Equal(t, "Kuriér", order.Shipping.Name)
		assert.True(t, order.Shipping.Price.Equal(decimal.NewFromFloat(4.90)))
		assert.True(t, order.Total().Equal(decimal.NewFromFloat(22.70)))
		assert.False(t, order.ValidatedAt.IsZero())
	})

	t.Run("empty locale defaults to slovak", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.Locale = ""

		order, err := v.Validate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "sk", order.Locale)
	})

	t.Run("unknown product is rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.CartItems[0].ProductID = "ghost-wine"

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "cartItems[0].productId")
	})

	t.Run("tampered price is rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.CartItems[0].UnitPrice = decimal.NewFromFloat(0.01)

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "cartItems[0].unitPrice")
	})

	t.Run("only the active sale price is accepted while on sale", func(t *testing.T) {
		v := newTestValidator(t)

		req := testRequest()
		req.CartItems = []domain.CartItem{
			{ProductID: "rose-2024", Title: "Rosé 2024", UnitPrice: decimal.NewFromFloat(7.50), Quantity: 1},
		}
		_, err := v.Validate(context.Background(), req)
		assert.NoError(t, err)

		// The pre-sale regular price no longer matches the current price.
		req = testRequest()
		req.CartItems = []domain.CartItem{
			{ProductID: "rose-2024", Title: "Rosé 2024", UnitPrice: decimal.NewFromFloat(9.90), Quantity: 1},
		}
		_, err = v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "cartItems[0].unitPrice")
	})

	t.Run("unknown shipping method is rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.ShippingMethodID = "drone"

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "shippingMethodId")
	})

	t.Run("unknown payment method is rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.PaymentMethodID = "barter"

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "paymentMethodId")
	})

	t.Run("disabled payment method is rejected", func(t *testing.T) {
		shipping, payment, countries := settings.Defaults()
		for i := range payment {
			if payment[i].ID == "cod" {
				payment[i].Enabled = false
			}
		}
		v := NewValidator(testCatalog(t), settings.NewStaticStore(shipping, payment, countries), testLogger())

		req := testRequest()
		req.PaymentMethodID = "cod"

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "paymentMethodId")
	})

	t.Run("unsupported shipping country is rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.ShippingForm.Country = "US"

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "shippingForm.country")
	})

	t.Run("missing required address fields are rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.BillingForm.Email = ""
		req.BillingForm.City = ""

		_, err := v.Validate(context.Background(), req)
		fields := rejectionFields(t, err)
		assert.Contains(t, fields, "billingForm.email")
		assert.Contains(t, fields, "billingForm.city")
	})

	t.Run("company order without company name is rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.BillingForm.IsCompany = true
		req.BillingForm.CompanyName = ""

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "billingForm.companyName")
	})

	t.Run("all failures are collected in one pass", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.CartItems[0].UnitPrice = decimal.NewFromFloat(0.01)
		req.ShippingMethodID = "drone"
		req.PaymentMethodID = "barter"

		_, err := v.Validate(context.Background(), req)
		fields := rejectionFields(t, err)
		assert.Contains(t, fields, "cartItems[0].unitPrice")
		assert.Contains(t, fields, "shippingMethodId")
		assert.Contains(t, fields, "paymentMethodId")
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		v := newTestValidator(t)
		req := testRequest()
		req.CartItems = nil

		_, err := v.Validate(context.Background(), req)
		assert.Contains(t, rejectionFields(t, err), "cartItems")
	})
}
