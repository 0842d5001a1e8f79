package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/handler"
	"github.com/vinohrad/shop/internal/service"
)

// CheckoutHandler exposes the checkout operations to the storefront.
type CheckoutHandler struct {
	checkout *service.Checkout
	logger   *slog.Logger
}

// NewCheckoutHandler creates a checkout API handler.
func NewCheckoutHandler(checkout *service.Checkout, logger *slog.Logger) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

// ValidateOrder handles POST /api/orders/validate.
// Returns 200 with the validated snapshot, or 400 with the complete
// rejection list.
func (h *CheckoutHandler) ValidateOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}

	order, err := h.checkout.ValidateOrder(r.Context(), req)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSONResponse(w, http.StatusOK, order)
}

// CreatePaymentIntent handles POST /api/checkout/payment-intent.
// Validates the order and opens a card payment at the gateway.
func (h *CheckoutHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}

	session, err := h.checkout.BeginCardPayment(r.Context(), req)
	if err != nil {
		h.logError(r, "card payment start failed", req.OrderID, err)
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSONResponse(w, http.StatusOK, session)
}

// PlaceCashOrder handles POST /api/checkout/cash-order.
// Validates and immediately finalizes a cash-on-delivery or pickup
// order.
func (h *CheckoutHandler) PlaceCashOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}

	finalized, err := h.checkout.PlaceCashOrder(r.Context(), req)
	if err != nil {
		h.logError(r, "cash order failed", req.OrderID, err)
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSONResponse(w, http.StatusOK, finalized)
}

func (h *CheckoutHandler) decodeOrder(w http.ResponseWriter, r *http.Request) (*domain.OrderRequest, bool) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Invalid JSON body"))
		return nil, false
	}
	return &req, true
}

func (h *CheckoutHandler) logError(r *http.Request, msg, orderID string, err error) {
	// Rejections are expected traffic; only real failures get error level.
	if domain.IsRejection(err) {
		return
	}
	h.logger.Error(msg,
		"order_id", orderID,
		"path", r.URL.Path,
		"error", err)
}
