package cashadvance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sbclc/sbclc/internal/platform/db"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// ListFilter narrows the advance list.
type ListFilter struct {
	Status      Status
	Category    Category
	RequestedBy int64
	Limit       int
	Offset      int
}

// Repository persists cash advances and liquidation expenses.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	Create(ctx context.Context, ca CashAdvance) (int64, error)
	Get(ctx context.Context, id int64) (CashAdvance, error)
	List(ctx context.Context, filter ListFilter) ([]CashAdvance, int, error)
	Update(ctx context.Context, ca CashAdvance) error
	InsertExpense(ctx context.Context, e Expense) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const advanceColumns = `id, doc_number, category, purpose, booking_id, amount, currency,
	status, requested_by, requested_at, approved_by, approved_at, rejected_by, rejected_at,
	rejection_reason, released_by, released_at, liquidated_at, expense_total, balance,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, ca CashAdvance) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO cash_advances (doc_number, category, purpose, booking_id, amount,
			currency, status, requested_by, requested_at, expense_total, balance,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, now(), now())
		RETURNING id`,
		ca.DocNumber, ca.Category, ca.Purpose, ca.BookingID, ca.Amount,
		ca.Currency, ca.Status, ca.RequestedBy, ca.RequestedAt,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: cash advance %s", httpx.ErrDuplicate, ca.DocNumber)
		}
		return 0, fmt.Errorf("insert cash advance: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (CashAdvance, error) {
	row := r.db.QueryRow(ctx, `SELECT `+advanceColumns+` FROM cash_advances WHERE id = $1`, id)
	ca, err := scanAdvance(row)
	if err != nil {
		return CashAdvance{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, advance_id, description, amount, receipt_ref, spent_at
		FROM cash_advance_expenses WHERE advance_id = $1 ORDER BY spent_at ASC, id ASC`, id)
	if err != nil {
		return CashAdvance{}, fmt.Errorf("list advance expenses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.AdvanceID, &e.Description, &e.Amount, &e.ReceiptRef, &e.SpentAt); err != nil {
			return CashAdvance{}, fmt.Errorf("scan advance expense: %w", err)
		}
		ca.Expenses = append(ca.Expenses, e)
	}
	return ca, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]CashAdvance, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.RequestedBy != 0 {
		where = append(where, "requested_by = "+arg(filter.RequestedBy))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM cash_advances`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cash advances: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+advanceColumns+` FROM cash_advances`+clause+
		" ORDER BY requested_at DESC, id DESC LIMIT "+arg(limit)+" OFFSET "+arg(filter.Offset), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cash advances: %w", err)
	}
	defer rows.Close()

	var out []CashAdvance
	for rows.Next() {
		ca, err := scanAdvance(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ca)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, ca CashAdvance) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cash_advances SET status = $2, approved_by = $3, approved_at = $4,
			rejected_by = $5, rejected_at = $6, rejection_reason = $7, released_by = $8,
			released_at = $9, liquidated_at = $10, expense_total = $11, balance = $12,
			updated_at = now()
		WHERE id = $1`,
		ca.ID, ca.Status, ca.ApprovedBy, ca.ApprovedAt, ca.RejectedBy, ca.RejectedAt,
		ca.RejectionReason, ca.ReleasedBy, ca.ReleasedAt, ca.LiquidatedAt,
		ca.ExpenseTotal, ca.Balance,
	)
	if err != nil {
		return fmt.Errorf("update cash advance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) InsertExpense(ctx context.Context, e Expense) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cash_advance_expenses (advance_id, description, amount, receipt_ref, spent_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.AdvanceID, e.Description, e.Amount, e.ReceiptRef, e.SpentAt,
	)
	if err != nil {
		return fmt.Errorf("insert advance expense: %w", err)
	}
	return nil
}

// GenerateNumber allocates the next advance number for the month.
// CA-{YYMM}-{SEQ}.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`,
		"CA", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("cash advance sequence: %w", err)
	}
	return fmt.Sprintf("CA-%s-%04d", date.Format("0601"), seq), nil
}

func scanAdvance(row pgx.Row) (CashAdvance, error) {
	var ca CashAdvance
	err := row.Scan(&ca.ID, &ca.DocNumber, &ca.Category, &ca.Purpose, &ca.BookingID,
		&ca.Amount, &ca.Currency, &ca.Status, &ca.RequestedBy, &ca.RequestedAt,
		&ca.ApprovedBy, &ca.ApprovedAt, &ca.RejectedBy, &ca.RejectedAt, &ca.RejectionReason,
		&ca.ReleasedBy, &ca.ReleasedAt, &ca.LiquidatedAt, &ca.ExpenseTotal, &ca.Balance,
		&ca.CreatedAt, &ca.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CashAdvance{}, httpx.ErrNotFound
		}
		return CashAdvance{}, fmt.Errorf("scan cash advance: %w", err)
	}
	return ca, nil
}
