package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CatalogHandler struct {
	timeout time.Duration
}

func NewCatalogHandler(timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{timeout: timeout}
}

type ProductDTO struct {
	domain.Product
	Available int `json:"available"`
}

type ProductPageDTO struct {
	Products   []ProductDTO `json:"products"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Total      int          `json:"total"`
}

type CategoryDTO struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

// GET /api/v1/products?category=&page=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_page", "page must be an integer")
			return
		}
		page = n
	}

	listing, err := a.Catalog.Listing(ctx, r.URL.Query().Get("category"), page)
	if err != nil {
		handleError(w, r, err)
		return
	}

	out := ProductPageDTO{
		Products:   make([]ProductDTO, len(listing.Products)),
		Page:       listing.Number,
		TotalPages: listing.TotalPages,
		Total:      listing.Total,
	}
	for i, p := range listing.Products {
		out.Products[i] = ProductDTO{Product: p, Available: catalog.Available(p, a.Cart)}
	}
	respondJSON(w, http.StatusOK, out)
}

// GET /api/v1/categories/{category_id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "category_id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id is required")
		return
	}
	name, err := a.Catalog.CategoryName(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, CategoryDTO{CategoryID: id, Name: name})
}
