package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using the Stripe Go SDK.
type StripeProvider struct {
	config StripeConfig
}

// NewStripeProvider creates a new Stripe billing provider.
// Sets the package-level API key; Stripe's SDK holds the key globally.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stripe.Key = config.APIKey

	return &StripeProvider{config: config}, nil
}

// CreatePaymentIntent creates a Stripe payment intent.
func (s *StripeProvider) CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	piParams := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.CustomerID != "" {
		piParams.Customer = stripe.String(params.CustomerID)
	}
	if params.ReceiptEmail != "" {
		piParams.ReceiptEmail = stripe.String(params.ReceiptEmail)
	}
	if params.Description != "" {
		piParams.Description = stripe.String(params.Description)
	}
	if s.config.StatementDescriptor != "" {
		piParams.StatementDescriptorSuffix = stripe.String(s.config.StatementDescriptor)
	}
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return convertPaymentIntent(pi), nil
}

// GetPaymentIntent retrieves a Stripe payment intent by ID.
func (s *StripeProvider) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	pi, err := paymentintent.Get(paymentIntentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrPaymentIntentNotFound
		}
		return nil, fmt.Errorf("stripe: get payment intent %s: %w", paymentIntentID, err)
	}

	return convertPaymentIntent(pi), nil
}

// GetCustomerByEmail searches Stripe for a customer by exact email.
// Returns nil, nil when no customer matches.
func (s *StripeProvider) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	iter := customer.Search(&stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Context: ctx,
			Query:   fmt.Sprintf("email:%q", email),
		},
	})

	for iter.Next() {
		c := iter.Customer()
		return convertCustomer(c), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe: search customer by email: %w", err)
	}

	return nil, nil
}

// CreateCustomer creates a Stripe customer.
func (s *StripeProvider) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	cParams := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(params.Email),
	}
	if params.Name != "" {
		cParams.Name = stripe.String(params.Name)
	}
	if params.Phone != "" {
		cParams.Phone = stripe.String(params.Phone)
	}
	for k, v := range params.Metadata {
		cParams.AddMetadata(k, v)
	}

	c, err := customer.New(cParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: create customer: %w", err)
	}

	return convertCustomer(c), nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature against the
// raw request body. The SDK recomputes the HMAC over the exact bytes, so
// callers must pass the body unmodified.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	_, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

func convertPaymentIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:                  pi.ID,
		ClientSecret:        pi.ClientSecret,
		AmountCents:         pi.Amount,
		AmountReceivedCents: pi.AmountReceived,
		Currency:            string(pi.Currency),
		Status:              string(pi.Status),
		Metadata:            pi.Metadata,
		CreatedAt:           time.Unix(pi.Created, 0),
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.LastPaymentError != nil {
		out.LastPaymentError = &PaymentError{
			Code:        string(pi.LastPaymentError.Code),
			Message:     pi.LastPaymentError.Msg,
			DeclineCode: string(pi.LastPaymentError.DeclineCode),
		}
	}
	return out
}

func convertCustomer(c *stripe.Customer) *Customer {
	return &Customer{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		CreatedAt: time.Unix(c.Created, 0),
	}
}
