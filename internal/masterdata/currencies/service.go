package currencies

import (
	"context"
	"strings"

	"github.com/sbclc/sbclc/internal/masterdata/shared"
	"github.com/sbclc/sbclc/internal/platform/cache"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

const cacheResource = "currencies"

type Service struct {
	repo  Repository
	cache *cache.QueryCache
}

func NewService(repo Repository, qc *cache.QueryCache) *Service {
	return &Service{repo: repo, cache: qc}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error) {
	return s.repo.List(ctx, filters)
}

// ListActive serves the cached currency options used on quotation and
// invoice forms.
func (s *Service) ListActive(ctx context.Context) ([]Currency, error) {
	key := cache.Key(cacheResource, "active")
	v, err := s.cache.Fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		active := true
		items, _, err := s.repo.List(ctx, shared.ListFilters{IsActive: &active, Limit: 200})
		return items, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]Currency), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Currency, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCurrencyRequest) (Currency, error) {
	if err := httpx.Validate(req); err != nil {
		return Currency{}, err
	}
	c, err := s.repo.Create(ctx, Currency{
		Code:     strings.ToUpper(req.Code),
		Name:     req.Name,
		Symbol:   req.Symbol,
		IsActive: true,
	})
	if err != nil {
		return Currency{}, err
	}
	s.cache.Invalidate(cacheResource)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCurrencyRequest) (Currency, error) {
	if err := httpx.Validate(req); err != nil {
		return Currency{}, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Currency{}, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Symbol != nil {
		c.Symbol = *req.Symbol
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return Currency{}, err
	}
	s.cache.Invalidate(cacheResource)
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(cacheResource)
	return nil
}
