package billing

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

// ListFilter narrows the invoice list.
type ListFilter struct {
	Status InvoiceStatus
	Search string
	Limit  int
	Offset int
}

// Repository persists invoices and payments.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	Create(ctx context.Context, inv Invoice) (int64, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, int, error)
	ListOutstanding(ctx context.Context) ([]Invoice, error)
	Update(ctx context.Context, inv Invoice) error
	InsertPayment(ctx context.Context, p Payment) error
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

const invoiceColumns = `id, doc_number, booking_id, customer_name, currency, total_amount,
	amount_paid, status, invoice_date, due_date, notes, created_by, billed_at, paid_at,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (doc_number, booking_id, customer_name, currency, total_amount,
			amount_paid, status, invoice_date, due_date, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10, now(), now())
		RETURNING id`,
		inv.DocNumber, inv.BookingID, inv.CustomerName, inv.Currency, inv.TotalAmount,
		inv.Status, inv.InvoiceDate, inv.DueDate, inv.Notes, inv.CreatedBy,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: invoice %s", httpx.ErrDuplicate, inv.DocNumber)
		}
		return 0, fmt.Errorf("insert invoice: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, amount, method, reference, paid_at, created_at
		FROM invoice_payments WHERE invoice_id = $1 ORDER BY paid_at ASC, id ASC`, id)
	if err != nil {
		return Invoice{}, fmt.Errorf("list invoice payments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt); err != nil {
			return Invoice{}, fmt.Errorf("scan invoice payment: %w", err)
		}
		inv.Payments = append(inv.Payments, p)
	}
	return inv, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
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
		where = append(where, "(doc_number ILIKE "+p+" OR customer_name ILIKE "+p+")")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM invoices`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices`+clause+
		" ORDER BY invoice_date DESC, id DESC LIMIT "+arg(limit)+" OFFSET "+arg(filter.Offset), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

// ListOutstanding returns billed invoices that still carry a balance.
func (r *repository) ListOutstanding(ctx context.Context) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE status IN ($1, $2) ORDER BY due_date ASC`, StatusBilled, StatusPartiallyPaid)
	if err != nil {
		return nil, fmt.Errorf("list outstanding invoices: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, inv Invoice) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET customer_name = $2, total_amount = $3, amount_paid = $4,
			status = $5, due_date = $6, notes = $7, billed_at = $8, paid_at = $9,
			updated_at = now()
		WHERE id = $1`,
		inv.ID, inv.CustomerName, inv.TotalAmount, inv.AmountPaid, inv.Status,
		inv.DueDate, inv.Notes, inv.BilledAt, inv.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) InsertPayment(ctx context.Context, p Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoice_payments (invoice_id, amount, method, reference, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		p.InvoiceID, p.Amount, p.Method, p.Reference, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice payment: %w", err)
	}
	return nil
}

// GenerateNumber allocates the next invoice number for the month.
// INV-{YYMM}-{SEQ}.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`,
		"INV", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("invoice sequence: %w", err)
	}
	return fmt.Sprintf("INV-%s-%04d", date.Format("0601"), seq), nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.DocNumber, &inv.BookingID, &inv.CustomerName, &inv.Currency,
		&inv.TotalAmount, &inv.AmountPaid, &inv.Status, &inv.InvoiceDate, &inv.DueDate,
		&inv.Notes, &inv.CreatedBy, &inv.BilledAt, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, httpx.ErrNotFound
		}
		return Invoice{}, fmt.Errorf("scan invoice: %w", err)
	}
	return inv, nil
}
