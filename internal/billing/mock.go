package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates payment flows without calling the Stripe API.
type MockProvider struct {
	// CreatePaymentIntentFunc allows customizing payment intent creation behavior
	CreatePaymentIntentFunc func(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)

	// GetPaymentIntentFunc allows customizing payment intent retrieval behavior
	GetPaymentIntentFunc func(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// GetCustomerByEmailFunc allows customizing customer lookup behavior
	GetCustomerByEmailFunc func(ctx context.Context, email string) (*Customer, error)

	// CreateCustomerFunc allows customizing customer creation behavior
	CreateCustomerFunc func(ctx context.Context, params CreateCustomerParams) (*Customer, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior
	VerifyWebhookSignatureFunc func(payload []byte, signature string, secret string) error

	// PaymentIntents stores created payment intents for retrieval
	PaymentIntents map[string]*PaymentIntent

	// Customers stores created customers for retrieval
	Customers map[string]*Customer

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		PaymentIntents: make(map[string]*PaymentIntent),
		Customers:      make(map[string]*Customer),
		CallLog:        []string{},
	}
}

// CreatePaymentIntent creates a mock payment intent.
func (m *MockProvider) CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreatePaymentIntent(%d, %s)", params.AmountCents, params.Currency))

	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, params)
	}

	pi := &PaymentIntent{
		ID:           "pi_" + uuid.New().String(),
		ClientSecret: "pi_" + uuid.New().String() + "_secret_" + uuid.New().String(),
		AmountCents:  params.AmountCents,
		Currency:     params.Currency,
		Status:       "requires_payment_method",
		CustomerID:   params.CustomerID,
		Metadata:     params.Metadata,
		CreatedAt:    time.Now(),
	}

	m.PaymentIntents[pi.ID] = pi
	return pi, nil
}

// GetPaymentIntent retrieves a mock payment intent.
func (m *MockProvider) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetPaymentIntent(%s)", paymentIntentID))

	if m.GetPaymentIntentFunc != nil {
		return m.GetPaymentIntentFunc(ctx, paymentIntentID)
	}

	pi, exists := m.PaymentIntents[paymentIntentID]
	if !exists {
		return nil, ErrPaymentIntentNotFound
	}

	return pi, nil
}

// GetCustomerByEmail searches for a mock customer by email.
func (m *MockProvider) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCustomerByEmail(%s)", email))

	if m.GetCustomerByEmailFunc != nil {
		return m.GetCustomerByEmailFunc(ctx, email)
	}

	for _, customer := range m.Customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return nil, nil // Not found
}

// CreateCustomer creates a mock customer.
func (m *MockProvider) CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCustomer(%s)", params.Email))

	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, params)
	}

	customer := &Customer{
		ID:        "cus_" + uuid.New().String()[:8],
		Email:     params.Email,
		Name:      params.Name,
		CreatedAt: time.Now(),
	}

	m.Customers[customer.ID] = customer
	return customer, nil
}

// VerifyWebhookSignature verifies a mock webhook signature.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}

	return nil
}

// SimulateSucceededPayment marks a stored payment intent as succeeded
// with the full amount received. Used in tests to simulate payment
// confirmation.
func (m *MockProvider) SimulateSucceededPayment(paymentIntentID string) error {
	pi, exists := m.PaymentIntents[paymentIntentID]
	if !exists {
		return ErrPaymentIntentNotFound
	}

	pi.Status = StatusSucceeded
	pi.AmountReceivedCents = pi.AmountCents
	return nil
}

// SimulateFailedPayment marks a stored payment intent as failed.
func (m *MockProvider) SimulateFailedPayment(paymentIntentID string, errorCode string, errorMessage string) error {
	pi, exists := m.PaymentIntents[paymentIntentID]
	if !exists {
		return ErrPaymentIntentNotFound
	}

	pi.Status = "requires_payment_method"
	pi.LastPaymentError = &PaymentError{
		Code:    errorCode,
		Message: errorMessage,
	}
	return nil
}
