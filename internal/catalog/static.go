package catalog

import "sort"

// StaticStore serves a fixed product list loaded at startup.
// The catalog is read-only for the lifetime of the process; price
// changes require a redeploy, which is what makes the store safe to
// read without locking.
type StaticStore struct {
	byID  map[string]Product
	order []string
}

// NewStaticStore builds a store from product records.
// Returns ErrDuplicateProduct if two records share an ID.
func NewStaticStore(products []Product) (*StaticStore, error) {
	s := &StaticStore{
		byID:  make(map[string]Product, len(products)),
		order: make([]string, 0, len(products)),
	}
	for _, p := range products {
		if _, exists := s.byID[p.ID]; exists {
			return nil, ErrDuplicateProduct
		}
		s.byID[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	sort.Strings(s.order)
	return s, nil
}

// Lookup resolves a product by ID.
func (s *StaticStore) Lookup(productID string) (*Product, error) {
	p, ok := s.byID[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// List returns all products sorted by ID.
func (s *StaticStore) List() []Product {
	out := make([]Product, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}
