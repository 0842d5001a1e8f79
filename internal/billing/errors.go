package billing

import "errors"

var (
	// ErrPaymentIntentNotFound indicates the payment intent ID is unknown
	// to the provider.
	ErrPaymentIntentNotFound = errors.New("billing: payment intent not found")

	// ErrInvalidSignature indicates webhook signature verification failed.
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")
)
