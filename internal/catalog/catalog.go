package catalog

import "github.com/shopspring/decimal"

// Product is an authoritative catalog record. Prices are in euros.
type Product struct {
	ID           string
	Title        string
	Category     string
	RegularPrice decimal.Decimal

	// SalePrice, when set, takes precedence over RegularPrice.
	SalePrice *decimal.Decimal
}

// CurrentPrice returns the price a customer must be charged right now:
// the sale price when one is set, the regular price otherwise.
func (p Product) CurrentPrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.RegularPrice
}

// Store supplies authoritative product records for order validation.
type Store interface {
	// Lookup resolves a product by ID.
	// Returns ErrProductNotFound when the ID is unknown.
	Lookup(productID string) (*Product, error)

	// List returns all products, for storefront consumption.
	List() []Product
}
