package settings

import "github.com/shopspring/decimal"

// StaticStore serves fixed checkout configuration loaded at startup.
type StaticStore struct {
	shipping      map[string]ShippingMethod
	payment       map[string]PaymentMethod
	shippingOrder []ShippingMethod
	paymentOrder  []PaymentMethod
	countries     []string
}

// NewStaticStore builds a store from configuration records.
// List order follows the order of the input slices.
func NewStaticStore(shipping []ShippingMethod, payment []PaymentMethod, countries []string) *StaticStore {
	s := &StaticStore{
		shipping:      make(map[string]ShippingMethod, len(shipping)),
		payment:       make(map[string]PaymentMethod, len(payment)),
		shippingOrder: shipping,
		paymentOrder:  payment,
		countries:     countries,
	}
	for _, m := range shipping {
		s.shipping[m.ID] = m
	}
	for _, m := range payment {
		s.payment[m.ID] = m
	}
	return s
}

// ShippingMethod resolves a shipping method by ID.
func (s *StaticStore) ShippingMethod(id string) (*ShippingMethod, error) {
	m, ok := s.shipping[id]
	if !ok {
		return nil, ErrShippingMethodNotFound
	}
	return &m, nil
}

// PaymentMethod resolves a payment method by ID.
func (s *StaticStore) PaymentMethod(id string) (*PaymentMethod, error) {
	m, ok := s.payment[id]
	if !ok {
		return nil, ErrPaymentMethodNotFound
	}
	return &m, nil
}

// ShippingMethods lists shipping methods in display order.
func (s *StaticStore) ShippingMethods() []ShippingMethod {
	return s.shippingOrder
}

// PaymentMethods lists payment methods in display order.
func (s *StaticStore) PaymentMethods() []PaymentMethod {
	return s.paymentOrder
}

// Countries lists countries orders can ship to.
func (s *StaticStore) Countries() []string {
	return s.countries
}

// Defaults returns the winery's standard checkout configuration.
// Prices are in euros.
func Defaults() ([]ShippingMethod, []PaymentMethod, []string) {
	shipping := []ShippingMethod{
		{ID: "courier", Name: "Kuriér", Price: decimal.NewFromFloat(4.90)},
		{ID: "post", Name: "Slovenská pošta", Price: decimal.NewFromFloat(3.50)},
		{ID: "pickup", Name: "Osobný odber", Price: decimal.Zero},
	}
	payment := []PaymentMethod{
		{
			ID:      "card",
			Kind:    PaymentKindCard,
			Enabled: true,
			DisplayNames: map[string]string{
				"sk": "Platba kartou online",
				"en": "Card payment online",
			},
		},
		{
			ID:      "cod",
			Kind:    PaymentKindCashOnDelivery,
			Enabled: true,
			DisplayNames: map[string]string{
				"sk": "Dobierka",
				"en": "Cash on delivery",
			},
		},
		{
			ID:      "pickup",
			Kind:    PaymentKindPickup,
			Enabled: true,
			DisplayNames: map[string]string{
				"sk": "Platba pri osobnom odbere",
				"en": "Pay at pickup",
			},
		},
	}
	countries := []string{"SK", "CZ", "AT", "HU", "PL"}
	return shipping, payment, countries
}
