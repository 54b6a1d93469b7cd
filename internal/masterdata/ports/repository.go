package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sbclc/sbclc/internal/masterdata/shared"
	"github.com/sbclc/sbclc/internal/platform/db"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Port, int, error)
	Get(ctx context.Context, id int64) (Port, error)
	Create(ctx context.Context, p Port) (Port, error)
	Update(ctx context.Context, p Port) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Port, int, error) {
	filters = filters.Normalize()
	query := `SELECT id, code, name, country, is_active FROM ports WHERE 1=1`
	countQuery := `SELECT count(*) FROM ports WHERE 1=1`
	var args []any
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := fmt.Sprintf(` AND (code ILIKE $%d OR name ILIKE $%d)`, len(args), len(args))
		query += cond
		countQuery += cond
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		cond := fmt.Sprintf(` AND is_active = $%d`, len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ports: %w", err)
	}

	args = append(args, filters.Limit, filters.Offset())
	query += fmt.Sprintf(` ORDER BY code ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ports: %w", err)
	}
	defer rows.Close()

	var out []Port
	for rows.Next() {
		var p Port
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Country, &p.IsActive); err != nil {
			return nil, 0, fmt.Errorf("scan port: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Port, error) {
	var p Port
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, country, is_active FROM ports WHERE id = $1`, id,
	).Scan(&p.ID, &p.Code, &p.Name, &p.Country, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Port{}, httpx.ErrNotFound
		}
		return Port{}, fmt.Errorf("get port: %w", err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Port) (Port, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO ports (code, name, country, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		p.Code, p.Name, p.Country, p.IsActive,
	).Scan(&p.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Port{}, fmt.Errorf("%w: port code %s", httpx.ErrDuplicate, p.Code)
		}
		return Port{}, fmt.Errorf("insert port: %w", err)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, p Port) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ports SET name = $2, country = $3, is_active = $4 WHERE id = $1`,
		p.ID, p.Name, p.Country, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update port: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete port: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
