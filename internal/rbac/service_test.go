package rbac

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/platform/cache"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type memoryRBACRepo struct {
	perms map[string]RolePermissions
	gets  int
}

func newMemoryRBACRepo() *memoryRBACRepo {
	return &memoryRBACRepo{perms: make(map[string]RolePermissions)}
}

func (r *memoryRBACRepo) Get(ctx context.Context, role string) (RolePermissions, error) {
	r.gets++
	if stored, ok := r.perms[role]; ok {
		return RolePermissions{Role: role, Matrix: stored.Matrix.Clone(), Version: stored.Version}, nil
	}
	return RolePermissions{Role: role, Matrix: make(Matrix)}, nil
}

func (r *memoryRBACRepo) Replace(ctx context.Context, role string, matrix Matrix, version int64) (RolePermissions, error) {
	stored := r.perms[role]
	if stored.Version != version {
		return RolePermissions{}, fmt.Errorf("%w: role %s", httpx.ErrVersionConflict, role)
	}
	next := RolePermissions{Role: role, Matrix: matrix.Clone(), Version: version + 1}
	r.perms[role] = next
	return next, nil
}

func (r *memoryRBACRepo) ListRoles(ctx context.Context) ([]string, error) {
	roles := make([]string, 0, len(r.perms))
	for role := range r.perms {
		roles = append(roles, role)
	}
	return roles, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, cache.NewQueryCache(time.Minute))
}

func TestServiceReplaceAndGetRoundTrip(t *testing.T) {
	repo := newMemoryRBACRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	matrix := NewMatrix(map[ModuleID][]Action{
		ModuleQuotations: {ActionView, ActionCreate, ActionApprove},
		ModuleBilling:    {ActionView, ActionExport},
	})

	saved, err := svc.Replace(ctx, "Finance", matrix, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.Version)

	fetched, err := svc.Get(ctx, "finance")
	require.NoError(t, err)
	require.True(t, matrix.Equal(fetched.Matrix), "saved and re-fetched grant maps must match")
	require.Equal(t, matrix.GrantMap(), fetched.Matrix.GrantMap())
}

func TestServiceVersionConflictKeepsStoredMatrix(t *testing.T) {
	repo := newMemoryRBACRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	first := NewMatrix(map[ModuleID][]Action{ModuleBookings: {ActionView}})
	_, err := svc.Replace(ctx, "ops", first, 0)
	require.NoError(t, err)

	// Second writer still holds version 0: its save must fail and the
	// first writer's matrix must survive.
	stale := NewMatrix(map[ModuleID][]Action{ModuleBookings: {ActionView, ActionDelete}})
	_, err = svc.Replace(ctx, "ops", stale, 0)
	require.ErrorIs(t, err, httpx.ErrVersionConflict)

	current, err := svc.Get(ctx, "ops")
	require.NoError(t, err)
	require.True(t, first.Equal(current.Matrix))
}

func TestServiceUnknownRoleDeniesEverything(t *testing.T) {
	svc := newTestService(newMemoryRBACRepo())
	ctx := context.Background()

	ok, err := svc.HasPermission(ctx, "ghost", ModuleBilling, ActionView)
	require.NoError(t, err)
	require.False(t, ok)

	levels, err := svc.AccessLevels(ctx, "ghost")
	require.NoError(t, err)
	for module, level := range levels {
		require.Equal(t, AccessNone, level, "module %s", module)
	}
}

func TestServiceCachesReadsAndInvalidatesOnReplace(t *testing.T) {
	repo := newMemoryRBACRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Get(ctx, "ops")
	require.NoError(t, err)
	_, err = svc.Get(ctx, "ops")
	require.NoError(t, err)
	require.Equal(t, 1, repo.gets, "second read should hit the cache")

	_, err = svc.Replace(ctx, "ops", NewMatrix(map[ModuleID][]Action{ModuleBookings: {ActionView}}), 0)
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, "ops")
	require.NoError(t, err)
	require.Equal(t, 2, repo.gets, "replace must invalidate the cached matrix")
	require.True(t, fetched.Matrix.HasPermission(ModuleBookings, ActionView))
}

func TestServiceCheckNotApplicable(t *testing.T) {
	repo := newMemoryRBACRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "admin", NewMatrix(map[ModuleID][]Action{ModuleDashboard: {ActionView}}), 0)
	require.NoError(t, err)

	decision, err := svc.Check(ctx, "admin", ModuleDashboard, ActionApprove)
	require.NoError(t, err)
	require.Equal(t, DecisionNotApplicable, decision)
}
