package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MockSubmitter implements SaleSubmitter for testing
type MockSubmitter struct {
	mu       sync.Mutex
	Result   *domain.SaleResult
	Err      error
	Requests []*domain.SaleRequest
	// Block, when set, holds AddSale until it is closed or ctx ends.
	Block   chan struct{}
	Entered chan struct{}
	// Panic, when non-nil, is raised instead of returning.
	Panic any
}

func (m *MockSubmitter) AddSale(ctx context.Context, req *domain.SaleRequest) (*domain.SaleResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Entered != nil {
		close(m.Entered)
	}
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Panic != nil {
		panic(m.Panic)
	}
	return m.Result, m.Err
}

func (m *MockSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockInvalidator records invalidated view roots
type MockInvalidator struct {
	Roots []string
}

func (m *MockInvalidator) InvalidateViews(_ context.Context, roots ...string) {
	m.Roots = append(m.Roots, roots...)
}

// MockIdentity implements IdentitySource for testing
type MockIdentity struct {
	Identity *domain.IdentityClaims
}

func (m *MockIdentity) Claims() (domain.IdentityClaims, bool) {
	if m.Identity == nil {
		return domain.IdentityClaims{}, false
	}
	return *m.Identity, true
}
