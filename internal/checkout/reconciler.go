// Package checkout turns the cart into a sale and reconciles local state with
// the outcome: the cart is cleared only when the backend confirms the sale.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/query"
)

const DefaultSuccessMessage = "Add Successfully"

type Cart interface {
	Snapshot() domain.CartSnapshot
	Clear()
}

type SaleSubmitter interface {
	AddSale(ctx context.Context, req *domain.SaleRequest) (*domain.SaleResult, error)
}

// Invalidator marks cached views stale, each root with everything below it.
type Invalidator interface {
	InvalidateViews(ctx context.Context, roots ...string)
}

type IdentitySource interface {
	Claims() (domain.IdentityClaims, bool)
}

type Options struct {
	// RequireIdentity rejects checkout without a signed-in user instead of
	// submitting an empty user id.
	RequireIdentity bool
	SuccessMessage  string
}

type Reconciler struct {
	cart     Cart
	sales    SaleSubmitter
	views    Invalidator
	identity IdentitySource
	opts     Options

	mu     sync.Mutex
	status domain.CheckoutStatus
}

func NewReconciler(cart Cart, sales SaleSubmitter, views Invalidator, identity IdentitySource, opts Options) *Reconciler {
	if opts.SuccessMessage == "" {
		opts.SuccessMessage = DefaultSuccessMessage
	}
	return &Reconciler{
		cart:     cart,
		sales:    sales,
		views:    views,
		identity: identity,
		opts:     opts,
		status:   domain.CheckoutStatusIdle,
	}
}

// Status is the state of the current or most recent attempt.
func (r *Reconciler) Status() domain.CheckoutStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Checkout submits the cart as one sale. On any failure the cart is left as it was.
func (r *Reconciler) Checkout(ctx context.Context) (*domain.SaleResult, error) {
	if err := r.begin(); err != nil {
		return nil, err
	}
	log := slog.With("attempt_id", uuid.NewString())

	snapshot := r.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		r.moveTo(domain.CheckoutStatusIdle)
		return nil, ErrEmptyCart
	}

	claims, authenticated := r.identity.Claims()
	if !authenticated {
		if r.opts.RequireIdentity {
			r.moveTo(domain.CheckoutStatusIdle)
			return nil, ErrUnauthenticated
		}
		log.WarnContext(ctx, "submitting sale without a signed-in user")
	}

	req, err := domain.NewSaleRequest(claims.SubjectID, snapshot.Items)
	if err != nil {
		r.moveTo(domain.CheckoutStatusIdle)
		return nil, err
	}

	r.moveTo(domain.CheckoutStatusSubmitting)
	defer r.abandon()
	log.InfoContext(ctx, "submitting sale", "lines", len(req.Lines), "user_id", req.UserID)

	result, err := r.sales.AddSale(ctx, req)
	if err != nil {
		r.moveTo(domain.CheckoutStatusFailed)
		log.ErrorContext(ctx, "sale submission failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if result == nil || result.Message != r.opts.SuccessMessage {
		rejection := &RejectionError{}
		if result != nil {
			rejection.Message, rejection.Status = result.Message, result.Status
		}
		r.moveTo(domain.CheckoutStatusFailed)
		log.WarnContext(ctx, "sale rejected", "message", rejection.Message, "status", rejection.Status)
		return result, fmt.Errorf("%w: %w", ErrSubmissionFailed, rejection)
	}

	r.cart.Clear()
	r.views.InvalidateViews(context.WithoutCancel(ctx), query.Products, query.Sales)
	r.moveTo(domain.CheckoutStatusSucceeded)
	log.InfoContext(ctx, "sale created", "sale_id", result.SaleID)
	return result, nil
}

// begin claims the reconciler for a new attempt.
func (r *Reconciler) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.InFlight() {
		return ErrCheckoutInProgress
	}
	if r.status.IsTerminal() {
		r.status = domain.CheckoutStatusIdle
	}
	if !domain.CanTransitionTo(r.status, domain.CheckoutStatusValidating) {
		return ErrIllegalTransition
	}
	r.status = domain.CheckoutStatusValidating
	return nil
}

// abandon fails an attempt that left Checkout while still Submitting,
// which only happens when the submitter panics.
func (r *Reconciler) abandon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == domain.CheckoutStatusSubmitting {
		r.status = domain.CheckoutStatusFailed
	}
}

func (r *Reconciler) moveTo(next domain.CheckoutStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !domain.CanTransitionTo(r.status, next) {
		slog.Error("illegal checkout transition", "from", r.status, "to", next)
	}
	r.status = next
}
