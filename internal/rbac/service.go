package rbac

import (
	"context"
	"strings"

	"github.com/sbclc/sbclc/internal/platform/cache"
)

const cacheResource = "role_permissions"

// Service orchestrates permission matrix reads and bulk writes, fronted by
// the shared query cache so hot permission checks do not hit the database.
type Service struct {
	repo  Repository
	cache *cache.QueryCache
}

// NewService constructs a Service.
func NewService(repo Repository, qc *cache.QueryCache) *Service {
	return &Service{repo: repo, cache: qc}
}

// Get returns the full matrix and version for a role. Unknown roles resolve
// to an empty matrix at version zero rather than an error.
func (s *Service) Get(ctx context.Context, role string) (RolePermissions, error) {
	role = normalizeRole(role)
	value, err := s.cache.Fetch(ctx, cache.Key(cacheResource, role), func(ctx context.Context) (interface{}, error) {
		return s.repo.Get(ctx, role)
	})
	if err != nil {
		return RolePermissions{}, err
	}
	return value.(RolePermissions), nil
}

// Replace performs the single atomic replace-all write for a role and
// invalidates the cached matrix. On failure nothing is invalidated, so the
// caller's unsaved edits remain consistent with what readers still see.
func (s *Service) Replace(ctx context.Context, role string, matrix Matrix, version int64) (RolePermissions, error) {
	role = normalizeRole(role)
	saved, err := s.repo.Replace(ctx, role, matrix, version)
	if err != nil {
		return RolePermissions{}, err
	}
	s.cache.Invalidate(cache.Key(cacheResource, role))
	return saved, nil
}

// Check answers the tri-state permission question for a role.
func (s *Service) Check(ctx context.Context, role string, module ModuleID, action Action) (Decision, error) {
	perms, err := s.Get(ctx, role)
	if err != nil {
		return DecisionDenied, err
	}
	return perms.Matrix.Decide(module, action), nil
}

// HasPermission reports whether the role is granted module/action.
func (s *Service) HasPermission(ctx context.Context, role string, module ModuleID, action Action) (bool, error) {
	decision, err := s.Check(ctx, role, module, action)
	if err != nil {
		return false, err
	}
	return decision == DecisionGranted, nil
}

// AccessLevels derives the per-module summary labels for a role.
func (s *Service) AccessLevels(ctx context.Context, role string) (map[ModuleID]AccessLevel, error) {
	perms, err := s.Get(ctx, role)
	if err != nil {
		return nil, err
	}
	levels := make(map[ModuleID]AccessLevel, len(moduleCatalog))
	for _, module := range moduleCatalog {
		levels[module] = perms.Matrix.AccessLevel(module)
	}
	return levels, nil
}

// ListRoles returns every role with a stored matrix.
func (s *Service) ListRoles(ctx context.Context) ([]string, error) {
	return s.repo.ListRoles(ctx)
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
