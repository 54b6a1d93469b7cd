package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sbclc/sbclc/internal/platform/db"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	Create(ctx context.Context, b Booking) (int64, error)
	Get(ctx context.Context, id int64) (Booking, error)
	List(ctx context.Context, filter ListFilter) ([]Booking, int, error)
	Update(ctx context.Context, b Booking) error
	GenerateRef(ctx context.Context, date time.Time) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const bookingColumns = `id, booking_ref, service_type, status, customer_name, consignee,
	origin_port, destination_port, commodity, gross_weight_kg, volume_cbm,
	container_qty, booking_date, remarks, created_by, created_at, updated_at`

func (r *repository) Create(ctx context.Context, b Booking) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO bookings (booking_ref, service_type, status, customer_name, consignee,
			origin_port, destination_port, commodity, gross_weight_kg, volume_cbm,
			container_qty, booking_date, remarks, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING id`,
		b.BookingRef, b.ServiceType, b.Status, b.CustomerName, b.Consignee,
		b.OriginPort, b.DestPort, b.Commodity, b.GrossWeightKg, b.VolumeCbm,
		b.ContainerQty, b.BookingDate, b.Remarks, b.CreatedBy,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: booking ref %s", httpx.ErrDuplicate, b.BookingRef)
		}
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Booking, int, error) {
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
	if filter.ServiceType != "" {
		where = append(where, "service_type = "+arg(filter.ServiceType))
	}
	if !filter.DateFrom.IsZero() {
		where = append(where, "booking_date >= "+arg(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		where = append(where, "booking_date <= "+arg(filter.DateTo))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(booking_ref ILIKE "+p+" OR customer_name ILIKE "+p+" OR commodity ILIKE "+p+")")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings` + clause +
		" ORDER BY booking_date DESC, id DESC LIMIT " + arg(limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, b Booking) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings SET status = $2, customer_name = $3, consignee = $4,
			origin_port = $5, destination_port = $6, commodity = $7,
			gross_weight_kg = $8, volume_cbm = $9, container_qty = $10,
			remarks = $11, updated_at = now()
		WHERE id = $1`,
		b.ID, b.Status, b.CustomerName, b.Consignee, b.OriginPort, b.DestPort,
		b.Commodity, b.GrossWeightKg, b.VolumeCbm, b.ContainerQty, b.Remarks,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// GenerateRef allocates the next booking reference for the month.
// BK-{YYMM}-{SEQ}.
func (r *repository) GenerateRef(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`,
		"BK", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("booking sequence: %w", err)
	}
	return fmt.Sprintf("BK-%s-%04d", date.Format("0601"), seq), nil
}

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.BookingRef, &b.ServiceType, &b.Status, &b.CustomerName,
		&b.Consignee, &b.OriginPort, &b.DestPort, &b.Commodity, &b.GrossWeightKg,
		&b.VolumeCbm, &b.ContainerQty, &b.BookingDate, &b.Remarks, &b.CreatedBy,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, httpx.ErrNotFound
		}
		return Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	return b, nil
}
