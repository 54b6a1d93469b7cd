package milestones

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbclc/sbclc/internal/platform/cache"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

const cacheResource = "milestone_definitions"

// Service manages the milestone definition master data.
type Service struct {
	repo  Repository
	cache *cache.QueryCache
}

// NewService constructs a Service.
func NewService(repo Repository, qc *cache.QueryCache) *Service {
	return &Service{repo: repo, cache: qc}
}

// List returns the definitions for a service type sorted ascending by
// sequence order. The sort is stable: ties are broken by code so repeated
// calls render identically.
func (s *Service) List(ctx context.Context, serviceType ServiceType) ([]Definition, error) {
	if !serviceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown service type %q", httpx.ErrValidation, serviceType)
	}
	value, err := s.cache.Fetch(ctx, cache.Key(cacheResource, string(serviceType)), func(ctx context.Context) (interface{}, error) {
		return s.repo.ListDefinitions(ctx, serviceType)
	})
	if err != nil {
		return nil, err
	}
	return value.([]Definition), nil
}

// ListActive returns only the active definitions, the set new bookings
// snapshot from.
func (s *Service) ListActive(ctx context.Context, serviceType ServiceType) ([]Definition, error) {
	defs, err := s.List(ctx, serviceType)
	if err != nil {
		return nil, err
	}
	active := make([]Definition, 0, len(defs))
	for _, def := range defs {
		if def.Active {
			active = append(active, def)
		}
	}
	return active, nil
}

// Get fetches one definition by ID.
func (s *Service) Get(ctx context.Context, id int64) (Definition, error) {
	if id <= 0 {
		return Definition{}, fmt.Errorf("%w: invalid milestone ID", httpx.ErrValidation)
	}
	return s.repo.GetDefinition(ctx, id)
}

// Create validates and stores a new definition. Duplicate codes and
// duplicate sequence orders within a service type are both rejected.
func (s *Service) Create(ctx context.Context, req CreateDefinitionRequest) (Definition, error) {
	serviceType := ServiceType(strings.TrimSpace(req.ServiceType))
	if !serviceType.IsValid() {
		return Definition{}, fmt.Errorf("%w: unknown service type %q", httpx.ErrValidation, req.ServiceType)
	}

	def := Definition{
		ServiceType:      serviceType,
		Code:             strings.ToUpper(strings.TrimSpace(req.MilestoneCode)),
		Name:             strings.TrimSpace(req.MilestoneName),
		SequenceOrder:    req.SequenceOrder,
		EstimatedDays:    req.EstimatedDays,
		NotifyBeforeDays: req.NotifyBeforeDays,
		Required:         bool(req.IsRequired),
		Active:           true,
		Priority:         req.Priority,
		Description:      strings.TrimSpace(req.Description),
	}
	if req.IsActive != nil {
		def.Active = bool(*req.IsActive)
	}
	if def.Priority == "" {
		def.Priority = PriorityMedium
	}
	if err := s.validate(def); err != nil {
		return Definition{}, err
	}
	if err := s.checkCollisions(ctx, def, 0); err != nil {
		return Definition{}, err
	}

	created, err := s.repo.CreateDefinition(ctx, def)
	if err != nil {
		return Definition{}, err
	}
	s.cache.Invalidate(cache.Key(cacheResource, string(serviceType)))
	return created, nil
}

// Update applies a partial patch to an existing definition.
func (s *Service) Update(ctx context.Context, id int64, req UpdateDefinitionRequest) (Definition, error) {
	def, err := s.Get(ctx, id)
	if err != nil {
		return Definition{}, err
	}

	if req.MilestoneName != nil {
		def.Name = strings.TrimSpace(*req.MilestoneName)
	}
	if req.SequenceOrder != nil {
		def.SequenceOrder = *req.SequenceOrder
	}
	if req.EstimatedDays != nil {
		def.EstimatedDays = *req.EstimatedDays
	}
	if req.NotifyBeforeDays != nil {
		def.NotifyBeforeDays = *req.NotifyBeforeDays
	}
	if req.IsRequired != nil {
		def.Required = bool(*req.IsRequired)
	}
	if req.IsActive != nil {
		def.Active = bool(*req.IsActive)
	}
	if req.Priority != nil {
		def.Priority = *req.Priority
	}
	if req.Description != nil {
		def.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.validate(def); err != nil {
		return Definition{}, err
	}
	if req.SequenceOrder != nil {
		if err := s.checkCollisions(ctx, def, def.ID); err != nil {
			return Definition{}, err
		}
	}

	updated, err := s.repo.UpdateDefinition(ctx, def)
	if err != nil {
		return Definition{}, err
	}
	s.cache.Invalidate(cache.Key(cacheResource, string(def.ServiceType)))
	return updated, nil
}

// Delete removes a definition unconditionally. Historical booking
// milestones keep their snapshot, so orphaned references stay viewable.
func (s *Service) Delete(ctx context.Context, id int64) error {
	def, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDefinition(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(cache.Key(cacheResource, string(def.ServiceType)))
	return nil
}

func (s *Service) validate(def Definition) error {
	if def.Code == "" {
		return fmt.Errorf("%w: milestone code is required", httpx.ErrValidation)
	}
	if def.Name == "" {
		return fmt.Errorf("%w: milestone name is required", httpx.ErrValidation)
	}
	if def.SequenceOrder <= 0 {
		return fmt.Errorf("%w: sequence order must be positive", httpx.ErrValidation)
	}
	if def.EstimatedDays < 0 || def.NotifyBeforeDays < 0 {
		return fmt.Errorf("%w: durations cannot be negative", httpx.ErrValidation)
	}
	if !def.Priority.IsValid() {
		return fmt.Errorf("%w: unknown priority %q", httpx.ErrValidation, def.Priority)
	}
	return nil
}

// checkCollisions guards code and sequence uniqueness within a service type
// before hitting the database constraint, so the caller gets a precise
// message instead of a bare constraint name.
func (s *Service) checkCollisions(ctx context.Context, def Definition, selfID int64) error {
	existing, err := s.repo.ListDefinitions(ctx, def.ServiceType)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == selfID {
			continue
		}
		if other.Code == def.Code {
			return fmt.Errorf("%w: milestone code %s already exists for %s", httpx.ErrDuplicate, def.Code, def.ServiceType)
		}
		if other.SequenceOrder == def.SequenceOrder {
			return fmt.Errorf("%w: sequence %d already used by %s", httpx.ErrDuplicate, def.SequenceOrder, other.Code)
		}
	}
	return nil
}
