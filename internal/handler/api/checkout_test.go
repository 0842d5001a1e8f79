package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinohrad/shop/internal/billing"
	"github.com/vinohrad/shop/internal/catalog"
	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/email"
	"github.com/vinohrad/shop/internal/invoicing"
	"github.com/vinohrad/shop/internal/service"
	"github.com/vinohrad/shop/internal/settings"
	"github.com/vinohrad/shop/internal/telemetry"
)

func newTestHandler(t *testing.T) (*CheckoutHandler, *email.MockSender) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := telemetry.NewBusinessMetrics("test", prometheus.NewRegistry())
	set := settings.NewStaticStore(settings.Defaults())

	cat, err := catalog.NewStaticStore([]catalog.Product{
		{ID: "frankovka-2022", Title: "Frankovka modrá 2022", Category: "red", RegularPrice: decimal.NewFromFloat(8.90)},
	})
	require.NoError(t, err)

	sender := email.NewMockSender()
	invoicingSvc := invoicing.NewService(invoicing.NewMockClient(), logger)
	emailSvc := email.NewService(sender, "obchod@vinohrad.sk", "Vinohrad", "admin@vinohrad.sk")
	dispatcher := service.NewDispatcher(emailSvc, invoicingSvc, set, metrics, logger)
	finalizer := service.NewFinalizer(invoicingSvc, dispatcher, metrics, logger)
	validator := service.NewValidator(cat, set, logger)
	checkout := service.NewCheckout(validator, billing.NewMockProvider(), set, finalizer, metrics, logger)

	return NewCheckoutHandler(checkout, logger), sender
}

func orderBody(t *testing.T, mutate func(*domain.OrderRequest)) *bytes.Reader {
	t.Helper()
	req := &domain.OrderRequest{
		OrderID: "ord_api1",
		CartItems: []domain.CartItem{
			{ProductID: "frankovka-2022", Title: "Frankovka modrá 2022", UnitPrice: decimal.NewFromFloat(8.90), Quantity: 1},
		},
		ShippingForm: domain.AddressForm{
			FirstName: "Jana", LastName: "Nováková", Country: "SK", City: "Bratislava",
			Address1: "Hlavná 1", PostalCode: "81101", Phone: "+421900111222", Email: "jana@example.sk",
		},
		BillingForm: domain.AddressForm{
			FirstName: "Jana", LastName: "Nováková", Country: "SK", City: "Bratislava",
			Address1: "Hlavná 1", PostalCode: "81101", Phone: "+421900111222", Email: "jana@example.sk",
		},
		ShippingMethodID: "courier",
		PaymentMethodID:  "card",
	}
	if mutate != nil {
		mutate(req)
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestValidateOrderEndpoint(t *testing.T) {
	t.Run("valid order returns snapshot", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/validate", orderBody(t, nil))
		rec := httptest.NewRecorder()
		h.ValidateOrder(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var order domain.ValidatedOrder
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
		assert.Equal(t, "ord_api1", order.OrderID)
		assert.Equal(t, "Kuriér", order.Shipping.Name)
	})

	t.Run("rejections come back as 400 with field list", func(t *testing.T) {
		h, _ := newTestHandler(t)

		body := orderBody(t, func(r *domain.OrderRequest) {
			r.CartItems[0].UnitPrice = decimal.NewFromFloat(0.01)
			r.ShippingMethodID = "drone"
		})
		req := httptest.NewRequest(http.MethodPost, "/api/orders/validate", body)
		rec := httptest.NewRecorder()
		h.ValidateOrder(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var payload struct {
			Error struct {
				Code       string `json:"code"`
				Rejections []struct {
					Field  string `json:"field"`
					Reason string `json:"reason"`
				} `json:"rejections"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
		assert.Equal(t, domain.EINVALID, payload.Error.Code)
		assert.Len(t, payload.Error.Rejections, 2)
	})

	t.Run("malformed JSON returns 400", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/orders/validate", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		h.ValidateOrder(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreatePaymentIntentEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/payment-intent", orderBody(t, nil))
	rec := httptest.NewRecorder()
	h.CreatePaymentIntent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var session service.CardPaymentSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.NotEmpty(t, session.ClientSecret)
	// 8.90 + 4.90 shipping
	assert.Equal(t, int64(1380), session.AmountCents)
}

func TestPlaceCashOrderEndpoint(t *testing.T) {
	t.Run("cod order finalizes and reports email outcomes", func(t *testing.T) {
		h, sender := newTestHandler(t)

		body := orderBody(t, func(r *domain.OrderRequest) { r.PaymentMethodID = "cod" })
		req := httptest.NewRequest(http.MethodPost, "/api/checkout/cash-order", body)
		rec := httptest.NewRecorder()
		h.PlaceCashOrder(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var finalized domain.FinalizedOrder
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&finalized))
		assert.True(t, finalized.EmailsSent.Admin)
		assert.True(t, finalized.EmailsSent.Customer)
		assert.NotEmpty(t, finalized.InvoiceID)
		assert.Len(t, sender.Sent, 2)
	})

	t.Run("card method on cash path returns 400", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/cash-order", orderBody(t, nil))
		rec := httptest.NewRecorder()
		h.PlaceCashOrder(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
