package rfp

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

// ListFilter narrows the request list.
type ListFilter struct {
	Status Status
	Search string
	Limit  int
	Offset int
}

// Repository persists requests for payment.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	Create(ctx context.Context, req RFP) (int64, error)
	Get(ctx context.Context, id int64) (RFP, error)
	List(ctx context.Context, filter ListFilter) ([]RFP, int, error)
	Update(ctx context.Context, req RFP) error
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

const rfpColumns = `id, doc_number, payee, purpose, booking_id, amount, currency, due_date,
	status, created_by, submitted_at, approved_by, approved_at, rejected_by, rejected_at,
	rejection_reason, disbursed_by, disbursed_at, payment_method, payment_ref,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, req RFP) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO rfps (doc_number, payee, purpose, booking_id, amount, currency,
			due_date, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id`,
		req.DocNumber, req.Payee, req.Purpose, req.BookingID, req.Amount,
		req.Currency, req.DueDate, req.Status, req.CreatedBy,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: rfp %s", httpx.ErrDuplicate, req.DocNumber)
		}
		return 0, fmt.Errorf("insert rfp: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (RFP, error) {
	row := r.db.QueryRow(ctx, `SELECT `+rfpColumns+` FROM rfps WHERE id = $1`, id)
	return scanRFP(row)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]RFP, int, error) {
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
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(doc_number ILIKE "+p+" OR payee ILIKE "+p+")")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM rfps`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rfps: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+rfpColumns+` FROM rfps`+clause+
		" ORDER BY due_date ASC, id DESC LIMIT "+arg(limit)+" OFFSET "+arg(filter.Offset), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rfps: %w", err)
	}
	defer rows.Close()

	var out []RFP
	for rows.Next() {
		req, err := scanRFP(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, req)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, req RFP) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE rfps SET payee = $2, purpose = $3, amount = $4, due_date = $5, status = $6,
			submitted_at = $7, approved_by = $8, approved_at = $9, rejected_by = $10,
			rejected_at = $11, rejection_reason = $12, disbursed_by = $13, disbursed_at = $14,
			payment_method = $15, payment_ref = $16, updated_at = now()
		WHERE id = $1`,
		req.ID, req.Payee, req.Purpose, req.Amount, req.DueDate, req.Status,
		req.SubmittedAt, req.ApprovedBy, req.ApprovedAt, req.RejectedBy, req.RejectedAt,
		req.RejectionReason, req.DisbursedBy, req.DisbursedAt, req.Method, req.PaymentRef,
	)
	if err != nil {
		return fmt.Errorf("update rfp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// GenerateNumber allocates the next request number for the month.
// RFP-{YYMM}-{SEQ}.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`,
		"RFP", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("rfp sequence: %w", err)
	}
	return fmt.Sprintf("RFP-%s-%04d", date.Format("0601"), seq), nil
}

func scanRFP(row pgx.Row) (RFP, error) {
	var req RFP
	err := row.Scan(&req.ID, &req.DocNumber, &req.Payee, &req.Purpose, &req.BookingID,
		&req.Amount, &req.Currency, &req.DueDate, &req.Status, &req.CreatedBy,
		&req.SubmittedAt, &req.ApprovedBy, &req.ApprovedAt, &req.RejectedBy, &req.RejectedAt,
		&req.RejectionReason, &req.DisbursedBy, &req.DisbursedAt, &req.Method, &req.PaymentRef,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RFP{}, httpx.ErrNotFound
		}
		return RFP{}, fmt.Errorf("scan rfp: %w", err)
	}
	return req, nil
}
