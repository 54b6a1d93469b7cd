package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sbclc/sbclc/internal/platform/db"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// RolePermissions is a role's full grant matrix plus its concurrency token.
type RolePermissions struct {
	Role    string
	Matrix  Matrix
	Version int64
}

// Repository persists role permission matrices.
type Repository interface {
	Get(ctx context.Context, role string) (RolePermissions, error)
	// Replace swaps the entire matrix for a role in one transaction. The
	// caller supplies the version it last read; a mismatch returns
	// httpx.ErrVersionConflict and leaves the stored matrix untouched.
	Replace(ctx context.Context, role string, matrix Matrix, version int64) (RolePermissions, error)
	ListRoles(ctx context.Context) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, role string) (RolePermissions, error) {
	result := RolePermissions{Role: role, Matrix: make(Matrix)}

	err := r.pool.QueryRow(ctx,
		`SELECT version FROM role_permission_versions WHERE role = $1`, role,
	).Scan(&result.Version)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return RolePermissions{}, fmt.Errorf("rbac: get version: %w", err)
		}
		// No row yet: the role has an empty matrix at version zero.
		result.Version = 0
	}

	rows, err := r.pool.Query(ctx,
		`SELECT module, action FROM role_permissions WHERE role = $1`, role)
	if err != nil {
		return RolePermissions{}, fmt.Errorf("rbac: get grants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var module, action string
		if err := rows.Scan(&module, &action); err != nil {
			return RolePermissions{}, err
		}
		result.Matrix.Grant(ModuleID(module), Action(action))
	}
	if err := rows.Err(); err != nil {
		return RolePermissions{}, err
	}
	return result, nil
}

func (r *repository) Replace(ctx context.Context, role string, matrix Matrix, version int64) (RolePermissions, error) {
	var next RolePermissions
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var stored int64
		err := tx.QueryRow(ctx,
			`SELECT version FROM role_permission_versions WHERE role = $1 FOR UPDATE`, role,
		).Scan(&stored)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("rbac: lock version: %w", err)
		}
		if stored != version {
			return fmt.Errorf("%w: role %s moved from version %d", httpx.ErrVersionConflict, role, version)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role = $1`, role); err != nil {
			return fmt.Errorf("rbac: clear grants: %w", err)
		}
		for module, actions := range matrix.GrantMap() {
			for _, action := range actions {
				if _, err := tx.Exec(ctx,
					`INSERT INTO role_permissions (role, module, action) VALUES ($1, $2, $3)`,
					role, string(module), string(action)); err != nil {
					return fmt.Errorf("rbac: insert grant: %w", err)
				}
			}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO role_permission_versions (role, version) VALUES ($1, $2)
			 ON CONFLICT (role) DO UPDATE SET version = $2`,
			role, version+1); err != nil {
			return fmt.Errorf("rbac: bump version: %w", err)
		}

		next = RolePermissions{Role: role, Matrix: matrix.Clone(), Version: version + 1}
		return nil
	})
	if err != nil {
		return RolePermissions{}, err
	}
	return next, nil
}

func (r *repository) ListRoles(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role FROM role_permission_versions ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("rbac: list roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
