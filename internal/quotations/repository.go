package quotations

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

// ListFilter narrows the quotation list.
type ListFilter struct {
	Status Status
	Search string
	Limit  int
	Offset int
}

// Repository persists quotations and their charge lines.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
	Create(ctx context.Context, q Quotation) (int64, error)
	InsertLine(ctx context.Context, line ChargeLine) error
	DeleteLines(ctx context.Context, quotationID int64) error
	Get(ctx context.Context, id int64) (Quotation, error)
	List(ctx context.Context, filter ListFilter) ([]Quotation, int, error)
	Update(ctx context.Context, q Quotation) error
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

const quotationColumns = `id, doc_number, service_type, customer_name, origin_port,
	destination_port, currency, status, quote_date, valid_until, total_amount, notes,
	created_by, submitted_at, approved_by, approved_at, rejected_by, rejected_at,
	rejection_reason, created_at, updated_at`

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (doc_number, service_type, customer_name, origin_port,
			destination_port, currency, status, quote_date, valid_until, total_amount,
			notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING id`,
		q.DocNumber, q.ServiceType, q.CustomerName, q.OriginPort, q.DestPort,
		q.Currency, q.Status, q.QuoteDate, q.ValidUntil, q.TotalAmount, q.Notes, q.CreatedBy,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: quotation %s", httpx.ErrDuplicate, q.DocNumber)
		}
		return 0, fmt.Errorf("insert quotation: %w", err)
	}
	return id, nil
}

func (r *repository) InsertLine(ctx context.Context, line ChargeLine) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quotation_lines (quotation_id, description, basis, quantity,
			unit_rate, amount, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		line.QuotationID, line.Description, line.Basis, line.Quantity,
		line.UnitRate, line.Amount, line.LineOrder,
	)
	if err != nil {
		return fmt.Errorf("insert quotation line: %w", err)
	}
	return nil
}

func (r *repository) DeleteLines(ctx context.Context, quotationID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM quotation_lines WHERE quotation_id = $1`, quotationID); err != nil {
		return fmt.Errorf("delete quotation lines: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id int64) (Quotation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	q, err := scanQuotation(row)
	if err != nil {
		return Quotation{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, description, basis, quantity, unit_rate, amount, line_order
		FROM quotation_lines WHERE quotation_id = $1 ORDER BY line_order ASC, id ASC`, id)
	if err != nil {
		return Quotation{}, fmt.Errorf("list quotation lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line ChargeLine
		if err := rows.Scan(&line.ID, &line.QuotationID, &line.Description, &line.Basis,
			&line.Quantity, &line.UnitRate, &line.Amount, &line.LineOrder); err != nil {
			return Quotation{}, fmt.Errorf("scan quotation line: %w", err)
		}
		q.Lines = append(q.Lines, line)
	}
	return q, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Quotation, int, error) {
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
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM quotations`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count quotations: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+quotationColumns+` FROM quotations`+clause+
		" ORDER BY quote_date DESC, id DESC LIMIT "+arg(limit)+" OFFSET "+arg(filter.Offset), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, q Quotation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET customer_name = $2, origin_port = $3, destination_port = $4,
			currency = $5, status = $6, valid_until = $7, total_amount = $8, notes = $9,
			submitted_at = $10, approved_by = $11, approved_at = $12, rejected_by = $13,
			rejected_at = $14, rejection_reason = $15, updated_at = now()
		WHERE id = $1`,
		q.ID, q.CustomerName, q.OriginPort, q.DestPort, q.Currency, q.Status,
		q.ValidUntil, q.TotalAmount, q.Notes, q.SubmittedAt, q.ApprovedBy, q.ApprovedAt,
		q.RejectedBy, q.RejectedAt, q.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("update quotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// GenerateNumber allocates the next quotation number for the month.
// QT-{YYMM}-{SEQ}.
func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`,
		"QT", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("quotation sequence: %w", err)
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	err := row.Scan(&q.ID, &q.DocNumber, &q.ServiceType, &q.CustomerName, &q.OriginPort,
		&q.DestPort, &q.Currency, &q.Status, &q.QuoteDate, &q.ValidUntil, &q.TotalAmount,
		&q.Notes, &q.CreatedBy, &q.SubmittedAt, &q.ApprovedBy, &q.ApprovedAt,
		&q.RejectedBy, &q.RejectedAt, &q.RejectionReason, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, httpx.ErrNotFound
		}
		return Quotation{}, fmt.Errorf("scan quotation: %w", err)
	}
	return q, nil
}
