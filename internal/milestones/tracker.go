package milestones

import (
	"context"
	"fmt"
	"time"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// Tracker manages per-booking milestone instances.
type Tracker struct {
	defs *Service
	repo Repository
}

// NewTracker constructs a Tracker.
func NewTracker(defs *Service, repo Repository) *Tracker {
	return &Tracker{defs: defs, repo: repo}
}

// Snapshot materialises instances for a new booking from the active
// definition set of its service type. The first step is reached
// immediately; the rest wait as pending. Inactive definitions are excluded,
// existing bookings are unaffected by later definition changes.
func (t *Tracker) Snapshot(ctx context.Context, bookingID int64, serviceType ServiceType, bookingDate time.Time) ([]Instance, error) {
	defs, err := t.defs.ListActive(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	instances := make([]Instance, 0, len(defs))
	for i, def := range defs {
		inst := Instance{
			BookingID:        bookingID,
			MilestoneCode:    def.Code,
			MilestoneName:    def.Name,
			SequenceOrder:    def.SequenceOrder,
			Required:         def.Required,
			Priority:         def.Priority,
			EstimatedDays:    def.EstimatedDays,
			NotifyBeforeDays: def.NotifyBeforeDays,
			State:            StatePending,
		}
		if i == 0 {
			reached := bookingDate
			inst.State = StateInProgress
			inst.ReachedAt = &reached
		}
		instances = append(instances, inst)
	}

	if len(instances) > 0 {
		if err := t.repo.InsertInstances(ctx, instances); err != nil {
			return nil, err
		}
	}
	return instances, nil
}

// List returns a booking's instances ordered by sequence.
func (t *Tracker) List(ctx context.Context, bookingID int64) ([]Instance, error) {
	if bookingID <= 0 {
		return nil, fmt.Errorf("%w: invalid booking ID", httpx.ErrValidation)
	}
	return t.repo.ListInstances(ctx, bookingID)
}

// Transition moves one instance to a new state, enforcing forward-only
// progress. Completing a step promotes the next pending step to
// in_progress so its clock starts.
func (t *Tracker) Transition(ctx context.Context, instanceID int64, target InstanceState, at time.Time) (Instance, error) {
	if !target.IsValid() {
		return Instance{}, fmt.Errorf("%w: unknown state %q", httpx.ErrValidation, target)
	}
	inst, err := t.repo.GetInstance(ctx, instanceID)
	if err != nil {
		return Instance{}, err
	}
	if !inst.State.CanTransition(target) {
		return Instance{}, fmt.Errorf("%w: cannot move %s from %s to %s",
			httpx.ErrValidation, inst.MilestoneCode, inst.State, target)
	}

	if at.IsZero() {
		at = time.Now()
	}
	inst.State = target
	switch target {
	case StateInProgress:
		if inst.ReachedAt == nil {
			reached := at
			inst.ReachedAt = &reached
		}
	case StateCompleted:
		if inst.ReachedAt == nil {
			reached := at
			inst.ReachedAt = &reached
		}
		completed := at
		inst.CompletedAt = &completed
	}

	if err := t.repo.UpdateInstance(ctx, inst); err != nil {
		return Instance{}, err
	}

	if target == StateCompleted {
		if err := t.advanceNext(ctx, inst, at); err != nil {
			return Instance{}, err
		}
	}
	return inst, nil
}

// Progress computes the completion percentage for a booking.
func (t *Tracker) Progress(ctx context.Context, bookingID int64) (float64, error) {
	instances, err := t.List(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	return Progress(instances), nil
}

func (t *Tracker) advanceNext(ctx context.Context, completed Instance, at time.Time) error {
	instances, err := t.repo.ListInstances(ctx, completed.BookingID)
	if err != nil {
		return err
	}
	for _, inst := range instances {
		if inst.SequenceOrder <= completed.SequenceOrder || inst.State != StatePending {
			continue
		}
		reached := at
		inst.State = StateInProgress
		inst.ReachedAt = &reached
		return t.repo.UpdateInstance(ctx, inst)
	}
	return nil
}
