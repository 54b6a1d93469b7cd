package currencies

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
	List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error)
	Get(ctx context.Context, id int64) (Currency, error)
	Create(ctx context.Context, c Currency) (Currency, error)
	Update(ctx context.Context, c Currency) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error) {
	filters = filters.Normalize()
	query := `SELECT id, code, name, symbol, is_active FROM currencies WHERE 1=1`
	countQuery := `SELECT count(*) FROM currencies WHERE 1=1`
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
		return nil, 0, fmt.Errorf("count currencies: %w", err)
	}

	args = append(args, filters.Limit, filters.Offset())
	query += fmt.Sprintf(` ORDER BY code ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.IsActive); err != nil {
			return nil, 0, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Currency, error) {
	var c Currency
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, symbol, is_active FROM currencies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Symbol, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Currency{}, httpx.ErrNotFound
		}
		return Currency{}, fmt.Errorf("get currency: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, c Currency) (Currency, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO currencies (code, name, symbol, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		c.Code, c.Name, c.Symbol, c.IsActive,
	).Scan(&c.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Currency{}, fmt.Errorf("%w: currency code %s", httpx.ErrDuplicate, c.Code)
		}
		return Currency{}, fmt.Errorf("insert currency: %w", err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, c Currency) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE currencies SET name = $2, symbol = $3, is_active = $4 WHERE id = $1`,
		c.ID, c.Name, c.Symbol, c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update currency: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM currencies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete currency: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
