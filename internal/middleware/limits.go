package middleware

import "net/http"

// Common size limits
const (
	KB = 1024
	MB = 1024 * KB

	// DefaultMaxBodySize bounds checkout request bodies. Carts are
	// small; anything near this limit is abuse.
	DefaultMaxBodySize = 1 * MB

	// WebhookMaxBodySize bounds gateway webhook payloads.
	WebhookMaxBodySize = 512 * KB
)

// MaxBodySize limits the size of request bodies. Requests whose body
// exceeds maxBytes get 413 Request Entity Too Large.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
