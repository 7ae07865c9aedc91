package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/query"
)

type fakeBackend struct {
	products      []domain.Product
	productsErr   error
	productCalls  int
	categoryCalls int
	added         []domain.NewProduct
	addedImage    string
}

func (f *fakeBackend) Products(context.Context) ([]domain.Product, error) {
	f.productCalls++
	return f.products, f.productsErr
}

func (f *fakeBackend) Category(_ context.Context, id string) (string, error) {
	f.categoryCalls++
	return "cat-" + id, nil
}

func (f *fakeBackend) AddProduct(_ context.Context, p domain.NewProduct, img *backend.ProductImage) (*domain.Product, error) {
	f.added = append(f.added, p)
	if img != nil {
		data, _ := io.ReadAll(img.Content)
		f.addedImage = img.Filename + ":" + string(data)
	}
	return &domain.Product{ProductID: "new", ProductName: p.ProductName}, nil
}

type cartQty map[string]int

func (c cartQty) QuantityOf(id string) int { return c[id] }

func products(n int, category string) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{ProductID: fmt.Sprintf("p%d", i+1), CategoryID: category, Stock: 5}
	}
	return out
}

func TestProducts_CachedUntilInvalidated(t *testing.T) {
	fb := &fakeBackend{products: products(3, "c1")}
	cache := query.NewClient(time.Hour)
	svc := NewService(fb, cache)
	ctx := context.Background()

	_, err := svc.Products(ctx)
	require.NoError(t, err)
	_, err = svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fb.productCalls)

	cache.Invalidate(query.Products)
	_, err = svc.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fb.productCalls)
}

func TestProducts_ErrorPropagates(t *testing.T) {
	boom := errors.New("down")
	svc := NewService(&fakeBackend{productsErr: boom}, query.NewClient(time.Hour))
	_, err := svc.Listing(context.Background(), "", 1)
	assert.ErrorIs(t, err, boom)
}

func TestProduct_Lookup(t *testing.T) {
	svc := NewService(&fakeBackend{products: products(2, "c1")}, query.NewClient(0))
	p, err := svc.Product(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ProductID)

	_, err = svc.Product(context.Background(), "zz")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCategoryName_CachedPerID(t *testing.T) {
	fb := &fakeBackend{}
	svc := NewService(fb, query.NewClient(time.Hour))
	ctx := context.Background()

	name, err := svc.CategoryName(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "cat-7", name)
	_, _ = svc.CategoryName(ctx, "7")
	_, _ = svc.CategoryName(ctx, "8")
	assert.Equal(t, 2, fb.categoryCalls)
}

func TestAddProduct_InvalidatesProducts(t *testing.T) {
	fb := &fakeBackend{products: products(1, "c1")}
	cache := query.NewClient(time.Hour)
	svc := NewService(fb, cache)
	ctx := context.Background()

	_, err := svc.Products(ctx)
	require.NoError(t, err)

	created, err := svc.AddProduct(ctx, domain.NewProduct{ProductName: "Mug"}, "mug.png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "new", created.ProductID)
	assert.Equal(t, "mug.png:img", fb.addedImage)
	assert.True(t, cache.IsStale(query.Key{query.Products}))
}

func TestListing_FiltersAndPaginates(t *testing.T) {
	all := append(products(10, "c1"), products(3, "c2")...)
	svc := NewService(&fakeBackend{products: all}, query.NewClient(0))
	ctx := context.Background()

	page, err := svc.Listing(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, 13, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Products, 5)

	page, err = svc.Listing(ctx, "c2", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	for _, p := range page.Products {
		assert.Equal(t, "c2", p.CategoryID)
	}
}

func TestPaginate(t *testing.T) {
	items := products(17, "c")
	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantLen   int
		wantFirst string
	}{
		{"first page", 1, 1, 8, "p1"},
		{"last partial page", 3, 3, 1, "p17"},
		{"page below range clamps to 1", 0, 1, 8, "p1"},
		{"page above range clamps to last", 9, 3, 1, "p17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.page, PageSize)
			assert.Equal(t, tt.wantPage, got.Number)
			assert.Equal(t, 3, got.TotalPages)
			require.Len(t, got.Products, tt.wantLen)
			assert.Equal(t, tt.wantFirst, got.Products[0].ProductID)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	got := Paginate(nil, 1, PageSize)
	assert.Equal(t, 0, got.TotalPages)
	assert.NotNil(t, got.Products)
	assert.Empty(t, got.Products)
}

func TestAvailableAndCheckAdd(t *testing.T) {
	p := domain.Product{ProductID: "p1", Stock: 5}

	assert.Equal(t, 5, Available(p, cartQty{}))
	assert.Equal(t, 2, Available(p, cartQty{"p1": 3}))
	assert.Equal(t, 0, Available(p, cartQty{"p1": 9}))

	assert.NoError(t, CheckAdd(p, cartQty{"p1": 3}, 2))
	assert.ErrorIs(t, CheckAdd(p, cartQty{"p1": 3}, 3), ErrInsufficientStock)
}

func TestStockLimit(t *testing.T) {
	p := domain.Product{ProductID: "p1", Stock: 5}

	assert.NoError(t, StockLimit(p, 5)(0))
	assert.NoError(t, StockLimit(p, 2)(3))
	assert.ErrorIs(t, StockLimit(p, 3)(3), ErrInsufficientStock)
	assert.ErrorIs(t, StockLimit(p, 1)(9), ErrInsufficientStock)
}
