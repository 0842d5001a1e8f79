package settings

import "github.com/shopspring/decimal"

// PaymentKind selects the checkout path for a payment method.
type PaymentKind string

const (
	// PaymentKindCard pays through the card gateway (async confirmation).
	PaymentKindCard PaymentKind = "card"

	// PaymentKindCashOnDelivery collects payment at delivery.
	PaymentKindCashOnDelivery PaymentKind = "cod"

	// PaymentKindPickup collects payment at pickup.
	PaymentKindPickup PaymentKind = "pickup"
)

// Immediate reports whether the kind finalizes the order at placement,
// without waiting for a gateway confirmation.
func (k PaymentKind) Immediate() bool {
	return k == PaymentKindCashOnDelivery || k == PaymentKindPickup
}

// ShippingMethod is an authoritative shipping option.
type ShippingMethod struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// PaymentMethod is an authoritative payment option.
// DisplayNames maps locale tags to customer-facing names; emails use
// these when localizing the confirmation.
type PaymentMethod struct {
	ID           string
	Kind         PaymentKind
	Enabled      bool
	DisplayNames map[string]string
}

// DisplayName returns the method name for a locale, falling back to
// the "sk" entry and then the method ID.
func (m PaymentMethod) DisplayName(locale string) string {
	if name, ok := m.DisplayNames[locale]; ok {
		return name
	}
	if name, ok := m.DisplayNames["sk"]; ok {
		return name
	}
	return m.ID
}

// Store supplies authoritative checkout configuration for validation.
type Store interface {
	// ShippingMethod resolves a shipping method by ID.
	// Returns ErrShippingMethodNotFound when the ID is unknown.
	ShippingMethod(id string) (*ShippingMethod, error)

	// PaymentMethod resolves a payment method by ID.
	// Returns ErrPaymentMethodNotFound when the ID is unknown.
	PaymentMethod(id string) (*PaymentMethod, error)

	// ShippingMethods lists shipping methods in display order.
	ShippingMethods() []ShippingMethod

	// PaymentMethods lists payment methods in display order.
	PaymentMethods() []PaymentMethod

	// Countries lists countries orders can ship to.
	Countries() []string
}
