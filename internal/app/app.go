// Package app is the storefront's explicit state container. One App is built
// at startup and handed to request handlers through the request context.
package app

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Accounts is the backend surface used by the sign-in and sign-up flows.
type Accounts interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, reg domain.Registration) (backend.Ack, error)
	VerifyEmail(ctx context.Context, email, otp string) (backend.Ack, error)
	ResendOTP(ctx context.Context, email string) (backend.Ack, error)
}

type App struct {
	Session   *auth.Session
	Cart      *cart.Store
	Checkout  *checkout.Reconciler
	Catalog   *catalog.Service
	Analytics *analytics.Service
	Accounts  Accounts
	Sidebar   *Sidebar
}

// SignIn exchanges credentials for a token and adopts it in the session.
func (a *App) SignIn(ctx context.Context, email, password string) (domain.IdentityClaims, error) {
	token, err := a.Accounts.Login(ctx, email, password)
	if err != nil {
		return domain.IdentityClaims{}, err
	}
	if err := a.Session.Login(ctx, token); err != nil {
		return domain.IdentityClaims{}, err
	}
	claims, _ := a.Session.Claims()
	return claims, nil
}

type ctxKey struct{}

func NewContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (*App, bool) {
	a, ok := ctx.Value(ctxKey{}).(*App)
	return a, ok && a != nil
}
