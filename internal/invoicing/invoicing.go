package invoicing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Contact is a billing contact in the invoicing service.
type Contact struct {
	ID         int64
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string

	// Slovak company tax identifiers; empty for consumers.
	ICO   string
	DIC   string
	ICDPH string
}

// ContactParams contains fields for creating or refreshing a contact.
type ContactParams struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
	ICO        string
	DIC        string
	ICDPH      string
}

// LineItem is one row on an invoice.
type LineItem struct {
	Description string
	Quantity    int32
	UnitPrice   decimal.Decimal
}

// Total returns UnitPrice * Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt32(li.Quantity))
}

// Invoice is an issued invoice document.
type Invoice struct {
	ID          string
	Number      string
	OrderID     string
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// CreateInvoiceParams contains parameters for issuing an invoice.
// OrderID is stored on the document and is the idempotency tag the
// search-before-create check keys on.
type CreateInvoiceParams struct {
	OrderID   string
	ContactID int64
	Currency  string
	Items     []LineItem
	Comment   string
}

// Client defines the low-level interface to the invoicing service.
// Implementations can use SuperFaktura, Fakturoid, etc.
type Client interface {
	// FindInvoiceByOrderID searches for an invoice tagged with the order ID.
	// Returns nil, nil when none exists (not an error).
	FindInvoiceByOrderID(ctx context.Context, orderID string) (*Invoice, error)

	// GetContactByEmail searches for a billing contact by email.
	// Returns nil, nil when none exists (not an error).
	GetContactByEmail(ctx context.Context, email string) (*Contact, error)

	// CreateContact creates a new billing contact.
	CreateContact(ctx context.Context, params ContactParams) (*Contact, error)

	// UpdateContact overwrites a contact's address and tax fields.
	UpdateContact(ctx context.Context, contactID int64, params ContactParams) (*Contact, error)

	// CreateInvoice issues and finalizes an invoice document.
	CreateInvoice(ctx context.Context, params CreateInvoiceParams) (*Invoice, error)

	// GetInvoicePDF downloads the rendered PDF for an invoice.
	GetInvoicePDF(ctx context.Context, invoiceID string) ([]byte, error)
}
