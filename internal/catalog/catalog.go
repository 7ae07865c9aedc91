// Package catalog serves the product listing: cached reads, category
// filtering, pagination and stock checks against the cart.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/query"
)

const PageSize = 8

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Backend interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Category(ctx context.Context, id string) (string, error)
	AddProduct(ctx context.Context, p domain.NewProduct, image *backend.ProductImage) (*domain.Product, error)
}

// CartQuantities reports how many units of a product are already in the cart.
type CartQuantities interface {
	QuantityOf(productID string) int
}

type Service struct {
	backend Backend
	cache   *query.Client
}

func NewService(b Backend, cache *query.Client) *Service {
	return &Service{backend: b, cache: cache}
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return query.Fetch(ctx, s.cache, query.Key{query.Products}, s.backend.Products)
}

func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ProductID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

// CategoryName returns the display name of a category.
func (s *Service) CategoryName(ctx context.Context, id string) (string, error) {
	return query.Fetch(ctx, s.cache, query.Key{query.Category, id}, func(ctx context.Context) (string, error) {
		return s.backend.Category(ctx, id)
	})
}

// AddProduct creates a product and marks the product list stale.
func (s *Service) AddProduct(ctx context.Context, p domain.NewProduct, imageName string, image io.Reader) (*domain.Product, error) {
	var img *backend.ProductImage
	if image != nil {
		img = &backend.ProductImage{Filename: imageName, Content: image}
	}
	created, err := s.backend.AddProduct(ctx, p, img)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(query.Products)
	return created, nil
}

// Page is one page of a filtered product listing. Number is 1-based.
type Page struct {
	Products   []domain.Product `json:"products"`
	Number     int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
}

// Listing filters by category ("" for all) and returns the requested page,
// clamped to the available range.
func (s *Service) Listing(ctx context.Context, categoryID string, page int) (Page, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return Page{}, err
	}
	return Paginate(FilterByCategory(products, categoryID), page, PageSize), nil
}

func FilterByCategory(products []domain.Product, categoryID string) []domain.Product {
	if categoryID == "" {
		return products
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

func Paginate(products []domain.Product, page, size int) Page {
	if size < 1 {
		size = PageSize
	}
	total := len(products)
	totalPages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := min(start+size, total)
	items := []domain.Product{}
	if start < total {
		items = products[start:end]
	}
	return Page{Products: items, Number: page, TotalPages: totalPages, Total: total}
}

// Available is the stock left once the cart's units are taken out. Never negative.
func Available(p domain.Product, cart CartQuantities) int {
	return max(p.Stock-cart.QuantityOf(p.ProductID), 0)
}

// CheckAdd reports ErrInsufficientStock when adding qty would exceed stock.
func CheckAdd(p domain.Product, cart CartQuantities, qty int) error {
	return StockLimit(p, qty)(cart.QuantityOf(p.ProductID))
}

// StockLimit is CheckAdd as a cart.Store.AddChecked limit, evaluated against
// the quantity the cart holds at the moment of the add.
func StockLimit(p domain.Product, qty int) func(current int) error {
	return func(current int) error {
		if left := max(p.Stock-current, 0); qty > left {
			return fmt.Errorf("%w: only %d of %s left", ErrInsufficientStock, left, p.ProductID)
		}
		return nil
	}
}
