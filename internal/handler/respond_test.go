package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vinohrad/shop/internal/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EPAYMENT, http.StatusPaymentRequired},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.expected {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var payload errorPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestErrorResponse(t *testing.T) {
	t.Run("domain error maps code and message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		rec := httptest.NewRecorder()

		ErrorResponse(rec, req, domain.NotFound("order.get", "order", "ord_1"))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		payload := decodeError(t, rec)
		if payload.Error.Code != domain.ENOTFOUND {
			t.Errorf("error.code = %q, want %q", payload.Error.Code, domain.ENOTFOUND)
		}
	})

	t.Run("rejection error returns 400 with field list", func(t *testing.T) {
		rej := &domain.RejectionError{Op: "order.validate"}
		rej.Add("cartItems[0].unitPrice", "price mismatch")
		rej.Add("shippingMethodId", "unknown method")

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		rec := httptest.NewRecorder()

		ErrorResponse(rec, req, rej)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		payload := decodeError(t, rec)
		if payload.Error.Code != domain.EINVALID {
			t.Errorf("error.code = %q, want %q", payload.Error.Code, domain.EINVALID)
		}
		if len(payload.Error.Rejections) != 2 {
			t.Fatalf("rejections = %d, want 2", len(payload.Error.Rejections))
		}
		if payload.Error.Rejections[0].Field != "cartItems[0].unitPrice" {
			t.Errorf("first rejection field = %q", payload.Error.Rejections[0].Field)
		}
	})

	t.Run("internal error hides details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		rec := httptest.NewRecorder()

		ErrorResponse(rec, req, domain.Internal(http.ErrBodyNotAllowed, "order.finalize", "database exploded: secret details"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
		payload := decodeError(t, rec)
		if payload.Error.Message != "An internal error occurred. Please try again later." {
			t.Errorf("internal details leaked: %q", payload.Error.Message)
		}
	})
}
