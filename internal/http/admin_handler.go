package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

const maxUploadSize = 10 << 20

type AdminHandler struct {
	timeout time.Duration
	now     func() time.Time
}

func NewAdminHandler(timeout time.Duration) *AdminHandler {
	return &AdminHandler{timeout: timeout, now: time.Now}
}

type SidebarDTO struct {
	View domain.SidebarView `json:"view"`
}

type RoleDTO struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// GET /api/v1/admin/sales
func (h *AdminHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	sales, err := a.Analytics.Sales(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

// GET /api/v1/admin/sales/{sale_id}/details
func (h *AdminHandler) SaleDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	details, err := a.Analytics.SaleDetails(ctx, chi.URLParam(r, "sale_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	users, err := a.Analytics.Users(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GET /api/v1/admin/users/{user_id}/role
func (h *AdminHandler) UserRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	userID := chi.URLParam(r, "user_id")
	role, err := a.Analytics.RoleByUser(ctx, userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, RoleDTO{UserID: userID, Role: role})
}

// GET /api/v1/admin/dashboard?from=YYYY-MM-DD&to=YYYY-MM-DD
// Both bounds are whole days; the default range is the last month.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	from, to := analytics.DefaultRange(h.now())
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD")
			return
		}
		from = d
	}
	if raw := q.Get("to"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_to", "to must be YYYY-MM-DD")
			return
		}
		to = d.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "invalid_range", "from must not be after to")
		return
	}

	summary, err := a.Analytics.Dashboard(ctx, from, to)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GET /api/v1/admin/sidebar
func (h *AdminHandler) GetSidebar(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, SidebarDTO{View: a.Sidebar.Current()})
}

// PUT /api/v1/admin/sidebar
func (h *AdminHandler) SetSidebar(w http.ResponseWriter, r *http.Request) {
	a, ok := appFrom(w, r)
	if !ok {
		return
	}
	var req SidebarDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := a.Sidebar.Set(req.View); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, SidebarDTO{View: a.Sidebar.Current()})
}

// POST /api/v1/admin/products
// Multipart form: "product" holds the product JSON, "imageFile" an optional image.
func (h *AdminHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	a, ok := appFrom(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "expected a multipart form")
		return
	}
	var product domain.NewProduct
	if err := json.Unmarshal([]byte(r.FormValue("product")), &product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product", "product must be a JSON object")
		return
	}
	if product.ProductName == "" || product.CategoryID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "product name and category are required")
		return
	}

	var (
		imageName string
		image     io.Reader
	)
	file, header, err := r.FormFile("imageFile")
	switch {
	case err == nil:
		defer file.Close()
		imageName, image = header.Filename, file
	case !errors.Is(err, http.ErrMissingFile):
		respondError(w, http.StatusBadRequest, "invalid_image", "imageFile could not be read")
		return
	}

	created, err := a.Catalog.AddProduct(ctx, product, imageName, image)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}
