package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain and backend errors to HTTP responses.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		httpStatus int
		code       string
		details    string
	)

	var rejection *checkout.RejectionError
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		httpStatus, code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, app.ErrUnknownSidebarView):
		httpStatus, code = http.StatusBadRequest, "invalid_view"
	case errors.Is(err, analytics.ErrRangeTooLarge):
		httpStatus, code = http.StatusBadRequest, "invalid_range"
	case errors.Is(err, cart.ErrItemNotFound), errors.Is(err, catalog.ErrProductNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrInsufficientStock):
		httpStatus, code = http.StatusConflict, "insufficient_stock"
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		httpStatus, code = http.StatusConflict, "checkout_in_progress"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus, code = http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, checkout.ErrUnauthenticated),
		errors.Is(err, backend.ErrUnauthorized),
		errors.Is(err, auth.ErrDecode):
		httpStatus, code = http.StatusUnauthorized, "unauthenticated"
	case errors.As(err, &rejection):
		httpStatus, code, details = http.StatusUnprocessableEntity, "sale_rejected", rejection.Message
	case errors.Is(err, backend.ErrUnavailable):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &apiErr):
		httpStatus, code, details = http.StatusBadGateway, "backend_error", apiErr.Message
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			httpStatus = apiErr.StatusCode
		}
	case errors.Is(err, checkout.ErrSubmissionFailed):
		httpStatus, code = http.StatusBadGateway, "submission_failed"
	default:
		httpStatus, code = http.StatusInternalServerError, "internal_error"
	}

	if httpStatus >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"request_id", getRequestID(r.Context()), "path", r.URL.Path, "error", err)
	}
	respondJSON(w, httpStatus, ErrorResponse{Error: err.Error(), Code: code, Details: details})
}
