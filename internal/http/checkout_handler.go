package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CheckoutHandler struct {
	timeout time.Duration
}

func NewCheckoutHandler(timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{timeout: timeout}
}

type CheckoutResponseDTO struct {
	SaleID  string `json:"sale_id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	result, err := a.Checkout.Checkout(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		SaleID:  result.SaleID,
		Status:  a.Checkout.Status().String(),
		Message: result.Message,
	})
}

// GET /api/v1/checkout/status
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, CheckoutResponseDTO{Status: a.Checkout.Status().String()})
}

type OrdersHandler struct {
	timeout time.Duration
}

func NewOrdersHandler(timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{timeout: timeout}
}

type OrdersResponseDTO struct {
	Orders []domain.Sale `json:"orders"`
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	claims, authenticated := a.Session.Claims()
	if !authenticated || claims.SubjectID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sales, err := a.Analytics.SalesByUser(ctx, claims.SubjectID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, OrdersResponseDTO{Orders: sales})
}
