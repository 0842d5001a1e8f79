package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, Adyen, etc.
type Provider interface {
	// CreatePaymentIntent creates a payment intent for one-time charges.
	// Returns payment intent with client_secret for frontend confirmation.
	CreatePaymentIntent(ctx context.Context, params CreatePaymentIntentParams) (*PaymentIntent, error)

	// GetPaymentIntent retrieves an existing payment intent by ID.
	// The webhook handler uses this to re-read the full record after a
	// status-change notification.
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// GetCustomerByEmail searches for an existing customer by email.
	// Returns nil, nil if no customer found (not an error).
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)

	// CreateCustomer creates a customer record in the billing provider.
	CreateCustomer(ctx context.Context, params CreateCustomerParams) (*Customer, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	// payload must be the exact raw request body; re-serializing a parsed
	// payload breaks the signature.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// CreateCustomerParams contains parameters for creating a customer.
type CreateCustomerParams struct {
	Email    string
	Name     string
	Phone    string
	Metadata map[string]string
}

// Customer represents a billing customer.
type Customer struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// CreatePaymentIntentParams contains parameters for creating a payment intent.
type CreatePaymentIntentParams struct {
	// AmountCents is the amount in smallest currency unit (cents for EUR)
	AmountCents int64

	// Currency code (ISO 4217) - e.g., "eur"
	Currency string

	// CustomerID is optional - if provided, links payment to existing customer
	CustomerID string

	// ReceiptEmail is where the provider sends its own receipt
	ReceiptEmail string

	// Description appears on the customer's statement and in the dashboard
	Description string

	// Metadata carries the flattened order for webhook-side reconstruction.
	// Provider metadata values are limited to short strings, hence the
	// flattening.
	Metadata map[string]string
}

// PaymentError contains details about a failed payment attempt.
type PaymentError struct {
	Code        string // provider error code
	Message     string // human-readable message
	DeclineCode string // reason card was declined (if applicable)
}

// PaymentIntent represents a gateway payment record.
type PaymentIntent struct {
	// ID is the provider payment intent ID (pi_...)
	ID string

	// ClientSecret is used by the payment widget to confirm payment
	ClientSecret string

	// AmountCents is the amount in smallest currency unit
	AmountCents int64

	// AmountReceivedCents is the amount actually captured so far.
	// Zero until the charge settles; the webhook handler treats a
	// succeeded intent with zero received amount as not yet final.
	AmountReceivedCents int64

	// Currency code
	Currency string

	// Status: requires_payment_method, processing, succeeded, canceled, ...
	Status string

	// CustomerID is the provider customer the intent is attached to
	CustomerID string

	// Metadata passed during creation
	Metadata map[string]string

	// CreatedAt is when the payment intent was created
	CreatedAt time.Time

	// LastPaymentError contains details if payment failed
	LastPaymentError *PaymentError
}

// StatusSucceeded is the terminal success status of a payment intent.
const StatusSucceeded = "succeeded"

// Cents converts a decimal euro amount to integer cents for the gateway.
func Cents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
