package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CartHandler struct {
	timeout time.Duration
}

func NewCartHandler(timeout time.Duration) *CartHandler {
	return &CartHandler{timeout: timeout}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	Subtotal     string `json:"subtotal"`
}

type CartResponseDTO struct {
	Items     []CartItemDTO `json:"items"`
	ItemCount int           `json:"item_count"`
	Total     string        `json:"total"`
}

func cartDTO(store *cart.Store) CartResponseDTO {
	items := store.Items()
	out := CartResponseDTO{
		Items:     make([]CartItemDTO, len(items)),
		ItemCount: store.ItemCount(),
		Total:     store.TotalString(),
	}
	for i, it := range items {
		out.Items[i] = CartItemDTO{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.StringFixed(2),
			Subtotal:     it.Subtotal().StringFixed(2),
		}
	}
	return out
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cartDTO(a.Cart))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	product, err := a.Catalog.Product(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	err = a.Cart.AddChecked(domain.CartLineItem{
		ProductID:    product.ProductID,
		Quantity:     req.Quantity,
		UnitPrice:    decimal.NewFromFloat(product.Price),
		ProductName:  product.ProductName,
		ProductImage: product.Image,
	}, catalog.StockLimit(product, req.Quantity))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, cartDTO(a.Cart))
}

// PUT /api/v1/cart/items/{product_id}
// Quantities below 1 are ignored and the cart is returned unchanged.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "product_id")
	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := a.Cart.UpdateQuantity(productID, req.Quantity); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cartDTO(a.Cart))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	a.Cart.Remove(chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, cartDTO(a.Cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	a.Cart.Clear()
	respondJSON(w, http.StatusOK, cartDTO(a.Cart))
}
