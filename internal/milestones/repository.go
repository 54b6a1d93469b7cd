package milestones

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sbclc/sbclc/internal/platform/db"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// Repository persists milestone definitions and booking milestone instances.
type Repository interface {
	ListDefinitions(ctx context.Context, serviceType ServiceType) ([]Definition, error)
	GetDefinition(ctx context.Context, id int64) (Definition, error)
	CreateDefinition(ctx context.Context, def Definition) (Definition, error)
	UpdateDefinition(ctx context.Context, def Definition) (Definition, error)
	DeleteDefinition(ctx context.Context, id int64) error

	InsertInstances(ctx context.Context, instances []Instance) error
	ListInstances(ctx context.Context, bookingID int64) ([]Instance, error)
	GetInstance(ctx context.Context, id int64) (Instance, error)
	UpdateInstance(ctx context.Context, inst Instance) error
	// ListReminderCandidates returns instances that are neither completed
	// nor already reminded, joined with their booking date for due
	// computation.
	ListReminderCandidates(ctx context.Context) ([]ReminderCandidate, error)
	MarkReminded(ctx context.Context, instanceID int64, at time.Time) error
}

// ReminderCandidate pairs an open instance with its booking's base date.
type ReminderCandidate struct {
	Instance    Instance
	BookingRef  string
	BookingDate time.Time
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const definitionColumns = `id, service_type, milestone_code, milestone_name, sequence_order,
	estimated_days, notify_before_days, is_required, is_active, priority, description,
	created_at, updated_at`

func (r *repository) ListDefinitions(ctx context.Context, serviceType ServiceType) ([]Definition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+definitionColumns+` FROM milestone_definitions
		 WHERE service_type = $1
		 ORDER BY sequence_order ASC, milestone_code ASC`, string(serviceType))
	if err != nil {
		return nil, fmt.Errorf("milestones: list definitions: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (r *repository) GetDefinition(ctx context.Context, id int64) (Definition, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+definitionColumns+` FROM milestone_definitions WHERE id = $1`, id)
	def, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Definition{}, httpx.ErrNotFound
		}
		return Definition{}, fmt.Errorf("milestones: get definition: %w", err)
	}
	return def, nil
}

func (r *repository) CreateDefinition(ctx context.Context, def Definition) (Definition, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO milestone_definitions
			(service_type, milestone_code, milestone_name, sequence_order, estimated_days,
			 notify_before_days, is_required, is_active, priority, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		 RETURNING id`,
		string(def.ServiceType), def.Code, def.Name, def.SequenceOrder, def.EstimatedDays,
		def.NotifyBeforeDays, def.Required, def.Active, string(def.Priority), def.Description, now,
	).Scan(&def.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Definition{}, fmt.Errorf("%w: milestone code or sequence already used for %s", httpx.ErrDuplicate, def.ServiceType)
		}
		return Definition{}, fmt.Errorf("milestones: create definition: %w", err)
	}
	def.CreatedAt = now
	def.UpdatedAt = now
	return def, nil
}

func (r *repository) UpdateDefinition(ctx context.Context, def Definition) (Definition, error) {
	now := time.Now()
	tag, err := r.pool.Exec(ctx,
		`UPDATE milestone_definitions SET
			milestone_name = $2, sequence_order = $3, estimated_days = $4,
			notify_before_days = $5, is_required = $6, is_active = $7,
			priority = $8, description = $9, updated_at = $10
		 WHERE id = $1`,
		def.ID, def.Name, def.SequenceOrder, def.EstimatedDays,
		def.NotifyBeforeDays, def.Required, def.Active,
		string(def.Priority), def.Description, now)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Definition{}, fmt.Errorf("%w: sequence already used for %s", httpx.ErrDuplicate, def.ServiceType)
		}
		return Definition{}, fmt.Errorf("milestones: update definition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Definition{}, httpx.ErrNotFound
	}
	def.UpdatedAt = now
	return def, nil
}

func (r *repository) DeleteDefinition(ctx context.Context, id int64) error {
	// Deletion is unconditional; booking_milestones rows carry their own
	// snapshot and stay queryable.
	tag, err := r.pool.Exec(ctx, `DELETE FROM milestone_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("milestones: delete definition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

const instanceColumns = `id, booking_id, milestone_code, milestone_name, sequence_order,
	is_required, priority, estimated_days, notify_before_days, state,
	reached_at, completed_at, reminded_at`

func (r *repository) InsertInstances(ctx context.Context, instances []Instance) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, inst := range instances {
			_, err := tx.Exec(ctx,
				`INSERT INTO booking_milestones
					(booking_id, milestone_code, milestone_name, sequence_order, is_required,
					 priority, estimated_days, notify_before_days, state, reached_at, completed_at, reminded_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				inst.BookingID, inst.MilestoneCode, inst.MilestoneName, inst.SequenceOrder, inst.Required,
				string(inst.Priority), inst.EstimatedDays, inst.NotifyBeforeDays, string(inst.State),
				inst.ReachedAt, inst.CompletedAt, inst.RemindedAt)
			if err != nil {
				return fmt.Errorf("milestones: insert instance: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) ListInstances(ctx context.Context, bookingID int64) ([]Instance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+instanceColumns+` FROM booking_milestones
		 WHERE booking_id = $1
		 ORDER BY sequence_order ASC, milestone_code ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("milestones: list instances: %w", err)
	}
	defer rows.Close()

	var instances []Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

func (r *repository) GetInstance(ctx context.Context, id int64) (Instance, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM booking_milestones WHERE id = $1`, id)
	inst, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Instance{}, httpx.ErrNotFound
		}
		return Instance{}, fmt.Errorf("milestones: get instance: %w", err)
	}
	return inst, nil
}

func (r *repository) UpdateInstance(ctx context.Context, inst Instance) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE booking_milestones SET
			state = $2, reached_at = $3, completed_at = $4, reminded_at = $5
		 WHERE id = $1`,
		inst.ID, string(inst.State), inst.ReachedAt, inst.CompletedAt, inst.RemindedAt)
	if err != nil {
		return fmt.Errorf("milestones: update instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListReminderCandidates(ctx context.Context) ([]ReminderCandidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT bm.id, bm.booking_id, bm.milestone_code, bm.milestone_name, bm.sequence_order,
			bm.is_required, bm.priority, bm.estimated_days, bm.notify_before_days, bm.state,
			bm.reached_at, bm.completed_at, bm.reminded_at,
			b.booking_ref, b.booking_date
		 FROM booking_milestones bm
		 JOIN bookings b ON b.id = bm.booking_id
		 WHERE bm.state <> 'completed' AND bm.reminded_at IS NULL AND bm.notify_before_days >= 0`)
	if err != nil {
		return nil, fmt.Errorf("milestones: list reminder candidates: %w", err)
	}
	defer rows.Close()

	var candidates []ReminderCandidate
	for rows.Next() {
		var c ReminderCandidate
		var state, priority string
		if err := rows.Scan(
			&c.Instance.ID, &c.Instance.BookingID, &c.Instance.MilestoneCode, &c.Instance.MilestoneName,
			&c.Instance.SequenceOrder, &c.Instance.Required, &priority, &c.Instance.EstimatedDays,
			&c.Instance.NotifyBeforeDays, &state, &c.Instance.ReachedAt, &c.Instance.CompletedAt,
			&c.Instance.RemindedAt, &c.BookingRef, &c.BookingDate,
		); err != nil {
			return nil, err
		}
		c.Instance.State = InstanceState(state)
		c.Instance.Priority = Priority(priority)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *repository) MarkReminded(ctx context.Context, instanceID int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE booking_milestones SET reminded_at = $2 WHERE id = $1`, instanceID, at)
	if err != nil {
		return fmt.Errorf("milestones: mark reminded: %w", err)
	}
	return nil
}

func scanDefinition(row pgx.Row) (Definition, error) {
	var def Definition
	var serviceType, priority string
	err := row.Scan(&def.ID, &serviceType, &def.Code, &def.Name, &def.SequenceOrder,
		&def.EstimatedDays, &def.NotifyBeforeDays, &def.Required, &def.Active,
		&priority, &def.Description, &def.CreatedAt, &def.UpdatedAt)
	if err != nil {
		return Definition{}, err
	}
	def.ServiceType = ServiceType(serviceType)
	def.Priority = Priority(priority)
	return def, nil
}

func scanInstance(row pgx.Row) (Instance, error) {
	var inst Instance
	var state, priority string
	err := row.Scan(&inst.ID, &inst.BookingID, &inst.MilestoneCode, &inst.MilestoneName,
		&inst.SequenceOrder, &inst.Required, &priority, &inst.EstimatedDays,
		&inst.NotifyBeforeDays, &state, &inst.ReachedAt, &inst.CompletedAt, &inst.RemindedAt)
	if err != nil {
		return Instance{}, err
	}
	inst.State = InstanceState(state)
	inst.Priority = Priority(priority)
	return inst, nil
}
