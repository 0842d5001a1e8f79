package settings

import "errors"

var (
	// ErrShippingMethodNotFound indicates an unknown shipping method ID.
	ErrShippingMethodNotFound = errors.New("settings: shipping method not found")

	// ErrPaymentMethodNotFound indicates an unknown payment method ID.
	ErrPaymentMethodNotFound = errors.New("settings: payment method not found")
)
