package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fjod/go_cart/storefront/internal/analytics"
	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/query"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// BackendMock implements every backend surface the handlers reach.
type BackendMock struct {
	mu         sync.Mutex
	products   []domain.Product
	sales      []domain.Sale
	saleResult *domain.SaleResult
	saleErr    error
	loginToken string
	err        error
	saleCalls  int
	added      []domain.NewProduct
}

func (m *BackendMock) Products(context.Context) ([]domain.Product, error) { return m.products, m.err }

func (m *BackendMock) Category(_ context.Context, id string) (string, error) {
	return "Category " + id, m.err
}

func (m *BackendMock) AddProduct(_ context.Context, p domain.NewProduct, _ *backend.ProductImage) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, p)
	return &domain.Product{ProductID: "new", ProductName: p.ProductName}, m.err
}

func (m *BackendMock) AddSale(context.Context, *domain.SaleRequest) (*domain.SaleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saleCalls++
	return m.saleResult, m.saleErr
}

func (m *BackendMock) Sales(context.Context) ([]domain.Sale, error) { return m.sales, m.err }

func (m *BackendMock) SalesByUser(_ context.Context, userID string) ([]domain.Sale, error) {
	var out []domain.Sale
	for _, s := range m.sales {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, m.err
}

func (m *BackendMock) SaleDetails(context.Context, string) ([]domain.SaleDetail, error) {
	return []domain.SaleDetail{{ID: "d1", Quantity: 1, ProductName: "Tea"}}, m.err
}

func (m *BackendMock) Users(context.Context) ([]domain.User, error) {
	return []domain.User{{UserID: "u1", Name: "Ann"}}, m.err
}

func (m *BackendMock) RoleByUser(context.Context, string) (string, error) { return "User", m.err }

func (m *BackendMock) Login(context.Context, string, string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.loginToken == "" {
		return "", backend.ErrUnauthorized
	}
	return m.loginToken, nil
}

func (m *BackendMock) Register(context.Context, domain.Registration) (backend.Ack, error) {
	return backend.Ack{Message: "registered", Status: "200"}, m.err
}

func (m *BackendMock) VerifyEmail(context.Context, string, string) (backend.Ack, error) {
	return backend.Ack{Message: "verified", Status: "200"}, m.err
}

func (m *BackendMock) ResendOTP(context.Context, string) (backend.Ack, error) {
	return backend.Ack{Message: "sent", Status: "200"}, m.err
}

func newTestApp(m *BackendMock) *app.App {
	cache := query.NewClient(time.Hour)
	session := auth.NewSession(storage.NewMemoryStore())
	store := cart.NewStore()
	return &app.App{
		Session:   session,
		Cart:      store,
		Checkout:  checkout.NewReconciler(store, m, events.NewBroadcaster(cache, nil), session, checkout.Options{}),
		Catalog:   catalog.NewService(m, cache),
		Analytics: analytics.NewService(m, cache),
		Accounts:  m,
		Sidebar:   app.NewSidebar(),
	}
}

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func signIn(t *testing.T, a *app.App, subject, role string) {
	t.Helper()
	if err := a.Session.Login(context.Background(), signToken(t, subject, role)); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, httptest.NewRequest(method, path, &buf))
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func catalogFixture() []domain.Product {
	return []domain.Product{
		{ProductID: "A", ProductName: "Tea", Price: 10, Stock: 5, CategoryID: "c1"},
		{ProductID: "B", ProductName: "Cup", Price: 5, Stock: 1, CategoryID: "c2"},
	}
}
