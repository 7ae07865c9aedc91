package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fjod/go_cart/storefront/internal/app"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// AppMiddleware makes the application container available to handlers.
func AppMiddleware(a *app.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(app.NewContext(r.Context(), a)))
		})
	}
}

// AuthRequired rejects requests while no user is signed in.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := appFrom(w, r)
		if !ok {
			return
		}
		if !a.Session.IsAuthenticated() {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminRequired admits only signed-in users with the admin role.
func AdminRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := appFrom(w, r)
		if !ok {
			return
		}
		claims, authenticated := a.Session.Claims()
		if !authenticated {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
			return
		}
		if !claims.Role.IsAdmin() {
			respondError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func appFrom(w http.ResponseWriter, r *http.Request) (*app.App, bool) {
	a, ok := app.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "application not configured")
	}
	return a, ok
}
