package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/storefront/internal/app"
)

// NewRouter builds the storefront API around a.
func NewRouter(a *app.App, requestTimeout time.Duration) http.Handler {
	authHandler := NewAuthHandler(requestTimeout)
	catalogHandler := NewCatalogHandler(requestTimeout)
	cartHandler := NewCartHandler(requestTimeout)
	checkoutHandler := NewCheckoutHandler(requestTimeout)
	ordersHandler := NewOrdersHandler(requestTimeout)
	adminHandler := NewAdminHandler(requestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(AppMiddleware(a))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Post("/register", authHandler.Register)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-otp", authHandler.ResendOTP)
			r.Get("/me", authHandler.Me)
		})

		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/categories/{category_id}", catalogHandler.GetCategory)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Checkout)
		r.Get("/checkout/status", checkoutHandler.Status)

		r.With(AuthRequired).Get("/orders", ordersHandler.ListOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminRequired)
			r.Get("/sales", adminHandler.ListSales)
			r.Get("/sales/{sale_id}/details", adminHandler.SaleDetails)
			r.Get("/users", adminHandler.ListUsers)
			r.Get("/users/{user_id}/role", adminHandler.UserRole)
			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/sidebar", adminHandler.GetSidebar)
			r.Put("/sidebar", adminHandler.SetSidebar)
			r.Post("/products", adminHandler.AddProduct)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
