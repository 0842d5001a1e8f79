package invoicing

import "errors"

var (
	// ErrInvoiceNotFound indicates the invoice ID is unknown to the service.
	ErrInvoiceNotFound = errors.New("invoicing: invoice not found")

	// ErrContactNotFound indicates the contact ID is unknown to the service.
	ErrContactNotFound = errors.New("invoicing: contact not found")
)
