package analytics

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/query"
)

type Backend interface {
	Sales(ctx context.Context) ([]domain.Sale, error)
	SalesByUser(ctx context.Context, userID string) ([]domain.Sale, error)
	SaleDetails(ctx context.Context, saleID string) ([]domain.SaleDetail, error)
	Users(ctx context.Context) ([]domain.User, error)
	RoleByUser(ctx context.Context, userID string) (string, error)
}

type Service struct {
	backend Backend
	cache   *query.Client
}

func NewService(b Backend, cache *query.Client) *Service {
	return &Service{backend: b, cache: cache}
}

func (s *Service) Sales(ctx context.Context) ([]domain.Sale, error) {
	return query.Fetch(ctx, s.cache, query.Key{query.Sales}, s.backend.Sales)
}

// SalesByUser is the order history of one user.
func (s *Service) SalesByUser(ctx context.Context, userID string) ([]domain.Sale, error) {
	return query.Fetch(ctx, s.cache, query.Key{query.Sales, userID}, func(ctx context.Context) ([]domain.Sale, error) {
		return s.backend.SalesByUser(ctx, userID)
	})
}

func (s *Service) SaleDetails(ctx context.Context, saleID string) ([]domain.SaleDetail, error) {
	return query.Fetch(ctx, s.cache, query.Key{query.SaleDetails, saleID}, func(ctx context.Context) ([]domain.SaleDetail, error) {
		return s.backend.SaleDetails(ctx, saleID)
	})
}

func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	return query.Fetch(ctx, s.cache, query.Key{query.Users}, s.backend.Users)
}

func (s *Service) RoleByUser(ctx context.Context, userID string) (string, error) {
	return query.Fetch(ctx, s.cache, query.Key{query.UserRole, userID}, func(ctx context.Context) (string, error) {
		return s.backend.RoleByUser(ctx, userID)
	})
}

// Dashboard summarizes all sales in [from, to]. Spans beyond MaxRangeDays
// return ErrRangeTooLarge without a backend call.
func (s *Service) Dashboard(ctx context.Context, from, to time.Time) (Summary, error) {
	if err := CheckRange(from, to); err != nil {
		return Summary{}, err
	}
	sales, err := s.Sales(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(sales, from, to), nil
}
