// Package dedup tracks recently processed event IDs so webhook
// retries within the dedup window do not finalize an order twice.
package dedup

import (
	"context"
	"time"
)

// Store records event IDs for a bounded window.
type Store interface {
	// Seen reports whether the ID was marked within the window.
	Seen(ctx context.Context, id string) (bool, error)

	// Mark records the ID. Marking an already-seen ID extends its window.
	Mark(ctx context.Context, id string) error
}

// DefaultWindow is how long a processed event ID is remembered.
// Stripe retries failed webhook deliveries for up to three days, so
// anything shorter risks a duplicate finalization on a late retry.
const DefaultWindow = 72 * time.Hour
