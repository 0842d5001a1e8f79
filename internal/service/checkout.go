package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vinohrad/shop/internal/billing"
	"github.com/vinohrad/shop/internal/domain"
	"github.com/vinohrad/shop/internal/settings"
	"github.com/vinohrad/shop/internal/telemetry"
)

// CardPaymentSession is what the storefront needs to hand the order
// to the card widget.
type CardPaymentSession struct {
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	AmountCents     int64  `json:"amountCents"`
	Currency        string `json:"currency"`
}

// Checkout drives the two checkout paths: card payments that wait for
// a gateway confirmation, and cash-like payments that finalize
// immediately at placement.
type Checkout struct {
	validator *Validator
	billing   billing.Provider
	settings  settings.Store
	finalizer *Finalizer
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// NewCheckout creates a checkout service.
func NewCheckout(validator *Validator, provider billing.Provider, set settings.Store, finalizer *Finalizer, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *Checkout {
	return &Checkout{
		validator: validator,
		billing:   provider,
		settings:  set,
		finalizer: finalizer,
		metrics:   metrics,
		logger:    logger,
	}
}

// ValidateOrder checks an order request without starting a payment.
// The storefront calls this to surface problems before the customer
// reaches the payment step.
func (c *Checkout) ValidateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.ValidatedOrder, error) {
	order, err := c.validator.Validate(ctx, req)
	if err != nil {
		c.metrics.OrdersValidated.WithLabelValues("rejected").Inc()
		return nil, err
	}
	c.metrics.OrdersValidated.WithLabelValues("accepted").Inc()
	return order, nil
}

// BeginCardPayment validates the order and opens a payment intent at
// the gateway. The full order travels in the intent metadata so the
// webhook handler can reconstruct it without any server-side session.
// The order is NOT finalized here; that happens when the gateway
// confirms the payment.
func (c *Checkout) BeginCardPayment(ctx context.Context, req *domain.OrderRequest) (*CardPaymentSession, error) {
	const op = "service.Checkout.BeginCardPayment"

	order, err := c.ValidateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	method, err := c.settings.PaymentMethod(order.PaymentMethodID)
	if err != nil {
		return nil, domain.Internal(err, op, "payment method lookup failed")
	}
	if method.Kind != settings.PaymentKindCard {
		return nil, domain.Invalid(op, fmt.Sprintf("payment method %q is not a card method", order.PaymentMethodID))
	}

	customerID, err := c.ensureCustomer(ctx, order)
	if err != nil {
		// A missing customer link only loses dashboard grouping; the
		// payment itself does not need it.
		c.logger.Warn("customer upsert failed, creating intent without customer",
			"order_id", order.OrderID,
			"error", err)
		customerID = ""
	}

	metadata, err := billing.EncodeOrderMetadata(order)
	if err != nil {
		return nil, domain.Internal(err, op, "order metadata encoding failed")
	}

	intent, err := c.billing.CreatePaymentIntent(ctx, billing.CreatePaymentIntentParams{
		AmountCents:  billing.Cents(order.Total()),
		Currency:     "eur",
		CustomerID:   customerID,
		ReceiptEmail: order.CustomerEmail(),
		Description:  fmt.Sprintf("Objednávka %s", order.OrderID),
		Metadata:     metadata,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "payment intent creation failed")
	}

	c.metrics.PaymentIntentsCreated.Inc()
	c.logger.Info("payment intent created",
		"order_id", order.OrderID,
		"payment_intent_id", intent.ID,
		"amount_cents", intent.AmountCents)

	return &CardPaymentSession{
		OrderID:         order.OrderID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		AmountCents:     intent.AmountCents,
		Currency:        intent.Currency,
	}, nil
}

// PlaceCashOrder validates and immediately finalizes an order paid at
// delivery or pickup. No gateway is involved.
func (c *Checkout) PlaceCashOrder(ctx context.Context, req *domain.OrderRequest) (*domain.FinalizedOrder, error) {
	const op = "service.Checkout.PlaceCashOrder"

	order, err := c.ValidateOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	method, err := c.settings.PaymentMethod(order.PaymentMethodID)
	if err != nil {
		return nil, domain.Internal(err, op, "payment method lookup failed")
	}
	if !method.Kind.Immediate() {
		return nil, domain.Invalid(op, fmt.Sprintf("payment method %q requires a card payment", order.PaymentMethodID))
	}

	finalized := c.finalizer.Finalize(ctx, order)
	c.metrics.CashOrdersPlaced.WithLabelValues(order.PaymentMethodID).Inc()
	return finalized, nil
}

// ensureCustomer finds or creates the gateway customer for the order's
// billing email and returns its ID.
func (c *Checkout) ensureCustomer(ctx context.Context, order *domain.ValidatedOrder) (string, error) {
	email := order.CustomerEmail()

	customer, err := c.billing.GetCustomerByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("customer lookup: %w", err)
	}
	if customer != nil {
		return customer.ID, nil
	}

	customer, err = c.billing.CreateCustomer(ctx, billing.CreateCustomerParams{
		Email: email,
		Name:  order.BillingForm.FullName(),
		Phone: order.BillingForm.Phone,
	})
	if err != nil {
		return "", fmt.Errorf("customer creation: %w", err)
	}
	return customer.ID, nil
}
