package ports

import (
	"context"
	"strings"

	"github.com/sbclc/sbclc/internal/masterdata/shared"
	"github.com/sbclc/sbclc/internal/platform/cache"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

const cacheResource = "ports"

// Service wraps port master data rules with a read-through cache for the
// unfiltered active list forms load.
type Service struct {
	repo  Repository
	cache *cache.QueryCache
}

func NewService(repo Repository, qc *cache.QueryCache) *Service {
	return &Service{repo: repo, cache: qc}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Port, int, error) {
	return s.repo.List(ctx, filters)
}

// ListActive serves the cached option list for booking forms.
func (s *Service) ListActive(ctx context.Context) ([]Port, error) {
	key := cache.Key(cacheResource, "active")
	v, err := s.cache.Fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		active := true
		items, _, err := s.repo.List(ctx, shared.ListFilters{IsActive: &active, Limit: 200})
		return items, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]Port), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Port, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreatePortRequest) (Port, error) {
	if err := httpx.Validate(req); err != nil {
		return Port{}, err
	}
	p, err := s.repo.Create(ctx, Port{
		Code:     strings.ToUpper(req.Code),
		Name:     req.Name,
		Country:  req.Country,
		IsActive: true,
	})
	if err != nil {
		return Port{}, err
	}
	s.cache.Invalidate(cacheResource)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdatePortRequest) (Port, error) {
	if err := httpx.Validate(req); err != nil {
		return Port{}, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Port{}, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Country != nil {
		p.Country = *req.Country
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return Port{}, err
	}
	s.cache.Invalidate(cacheResource)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(cacheResource)
	return nil
}
