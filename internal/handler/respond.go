package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vinohrad/shop/internal/domain"
)

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorPayload is the JSON error envelope.
type errorPayload struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Rejections []domain.Rejection `json:"rejections,omitempty"`
}

// ErrorResponse writes a JSON error response mapped from a domain
// error. Order rejections carry the complete field list so the
// storefront can annotate the form in one round trip.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)

	payload := errorPayload{
		Error: errorBody{
			Code:       code,
			Message:    domain.ErrorMessage(err),
			Rejections: domain.RejectionsFrom(err),
		},
	}

	JSONResponse(w, ErrorCodeToHTTPStatus(code), payload)
}

// JSONResponse writes a JSON body with the given status.
func JSONResponse(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
