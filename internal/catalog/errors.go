package catalog

import "errors"

var (
	// ErrProductNotFound indicates the product ID does not resolve.
	ErrProductNotFound = errors.New("catalog: product not found")

	// ErrDuplicateProduct indicates two records share an ID.
	ErrDuplicateProduct = errors.New("catalog: duplicate product id")
)
