package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a single cart line as submitted by the client.
// UnitPrice is client-asserted and must be re-verified against the
// catalog before the order is trusted.
type CartItem struct {
	ProductID string          `json:"productId" validate:"required"`
	Title     string          `json:"title" validate:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int32           `json:"quantity" validate:"required,gte=1"`
}

// LineTotal returns UnitPrice * Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// AddressForm is a customer-entered shipping or billing address.
// Company tax identifiers follow the Slovak registry conventions
// (ICO, DIC, IC DPH) and are only meaningful when IsCompany is set.
type AddressForm struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Country      string `json:"country" validate:"required"`
	City         string `json:"city" validate:"required"`
	Address1     string `json:"address1" validate:"required"`
	Address2     string `json:"address2,omitempty"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	IsCompany    bool   `json:"isCompany"`
	CompanyName  string `json:"companyName,omitempty" validate:"required_if=IsCompany true"`
	CompanyICO   string `json:"companyICO,omitempty"`
	CompanyDIC   string `json:"companyDIC,omitempty"`
	CompanyICDPH string `json:"companyICDPH,omitempty"`
}

// FullName joins first and last name for display and invoicing.
func (a AddressForm) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// OrderRequest is the untrusted cart + customer data as assembled by
// the storefront on form submission. OrderID is a client-generated
// correlation identifier, unique per checkout attempt. The request is
// immutable once received; validation produces either a rejection or
// a ValidatedOrder.
type OrderRequest struct {
	OrderID          string      `json:"orderId" validate:"required"`
	CartItems        []CartItem  `json:"cartItems" validate:"required,min=1,dive"`
	ShippingForm     AddressForm `json:"shippingForm"`
	BillingForm      AddressForm `json:"billingForm"`
	ShippingMethodID string      `json:"shippingMethodId" validate:"required"`
	PaymentMethodID  string      `json:"paymentMethodId" validate:"required"`
	Locale           string      `json:"locale,omitempty"`
}

// ShippingSnapshot is the authoritative shipping method data captured
// at validation time.
type ShippingSnapshot struct {
	MethodID string          `json:"methodId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}

// ValidatedOrder is an OrderRequest after server-side confirmation
// that every price and method reference matches the authoritative
// stores. Construct only via the order validator.
type ValidatedOrder struct {
	OrderID         string           `json:"orderId"`
	CartItems       []CartItem       `json:"cartItems"`
	ShippingForm    AddressForm      `json:"shippingForm"`
	BillingForm     AddressForm      `json:"billingForm"`
	Shipping        ShippingSnapshot `json:"shipping"`
	PaymentMethodID string           `json:"paymentMethodId"`
	Locale          string           `json:"locale"`
	ValidatedAt     time.Time        `json:"validatedAt"`
}

// Subtotal sums all cart line totals, excluding shipping.
func (o *ValidatedOrder) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.CartItems {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Total is the subtotal plus shipping.
func (o *ValidatedOrder) Total() decimal.Decimal {
	return o.Subtotal().Add(o.Shipping.Price)
}

// CustomerEmail returns the billing email, falling back to shipping.
func (o *ValidatedOrder) CustomerEmail() string {
	if o.BillingForm.Email != "" {
		return o.BillingForm.Email
	}
	return o.ShippingForm.Email
}

// EmailsSent records which confirmation emails were delivered.
type EmailsSent struct {
	Admin    bool `json:"admin"`
	Customer bool `json:"customer"`
}

// FinalizedOrder is the reconciled result of a confirmed payment:
// the validated order plus the outcome of the best-effort invoicing
// and notification steps. InvoiceID is empty when invoice creation
// failed; that failure never blocks finalization.
type FinalizedOrder struct {
	Order      ValidatedOrder `json:"order"`
	InvoiceID  string         `json:"invoiceId,omitempty"`
	EmailsSent EmailsSent     `json:"emailsSent"`
}
