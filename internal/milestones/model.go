// Package milestones maintains the per-service-type operational checklists a
// booking progresses through, and the per-booking tracking records derived
// from them.
package milestones

import "time"

// ServiceType partitions the milestone sets by booking category.
type ServiceType string

const (
	ServiceImport             ServiceType = "import"
	ServiceDomesticTrucking   ServiceType = "domestic_trucking"
	ServiceDomesticForwarding ServiceType = "domestic_forwarding"
)

// IsValid checks if the service type is known.
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceImport, ServiceDomesticTrucking, ServiceDomesticForwarding:
		return true
	default:
		return false
	}
}

// ServiceTypes lists every service type.
func ServiceTypes() []ServiceType {
	return []ServiceType{ServiceImport, ServiceDomesticTrucking, ServiceDomesticForwarding}
}

// Priority is the static urgency badge attached to a milestone definition.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is known.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Definition is one ordered checklist step for a service type.
type Definition struct {
	ID               int64       `json:"milestone_id"`
	ServiceType      ServiceType `json:"service_type"`
	Code             string      `json:"milestone_code"`
	Name             string      `json:"milestone_name"`
	SequenceOrder    int         `json:"sequence_order"`
	EstimatedDays    float64     `json:"estimated_days"`
	NotifyBeforeDays float64     `json:"notify_before_days"`
	Required         bool        `json:"-"`
	Active           bool        `json:"-"`
	Priority         Priority    `json:"priority"`
	Description      string      `json:"description"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// InstanceState is the completion state of one milestone on one booking.
type InstanceState string

const (
	StatePending    InstanceState = "pending"
	StateInProgress InstanceState = "in_progress"
	StateCompleted  InstanceState = "completed"
	StateBlocked    InstanceState = "blocked"
)

// IsValid checks if the state is known.
func (s InstanceState) IsValid() bool {
	switch s {
	case StatePending, StateInProgress, StateCompleted, StateBlocked:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving to target is legal. Progress is
// monotonic forward: completed is terminal, and no state ever returns to
// pending.
func (s InstanceState) CanTransition(target InstanceState) bool {
	if !target.IsValid() || s == target {
		return false
	}
	switch s {
	case StatePending:
		return target == StateInProgress || target == StateCompleted || target == StateBlocked
	case StateInProgress:
		return target == StateCompleted || target == StateBlocked
	case StateBlocked:
		return target == StateInProgress || target == StateCompleted
	default: // completed
		return false
	}
}

// Instance is the persisted tracking record tying a booking to one milestone.
// Definition fields are snapshotted at booking creation so the record stays
// viewable after the definition is edited or deleted.
type Instance struct {
	ID               int64         `json:"id"`
	BookingID        int64         `json:"booking_id"`
	MilestoneCode    string        `json:"milestone_code"`
	MilestoneName    string        `json:"milestone_name"`
	SequenceOrder    int           `json:"sequence_order"`
	Required         bool          `json:"is_required"`
	Priority         Priority      `json:"priority"`
	EstimatedDays    float64       `json:"estimated_days"`
	NotifyBeforeDays float64       `json:"notify_before_days"`
	State            InstanceState `json:"state"`
	ReachedAt        *time.Time    `json:"reached_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	RemindedAt       *time.Time    `json:"reminded_at,omitempty"`
}

// DueAt computes the expected completion time: the moment the step was
// reached (falling back to the booking date for unreached steps) plus the
// estimated duration.
func (i Instance) DueAt(bookingDate time.Time) time.Time {
	base := bookingDate
	if i.ReachedAt != nil {
		base = *i.ReachedAt
	}
	return base.Add(days(i.EstimatedDays))
}

// NotifyAt computes the reminder trigger point: the due date minus the
// configured lead time.
func (i Instance) NotifyAt(bookingDate time.Time) time.Time {
	return i.DueAt(bookingDate).Add(-days(i.NotifyBeforeDays))
}

// Progress returns the completion percentage over all steps, required or
// not. Zero steps yield zero, never a division error.
func Progress(instances []Instance) float64 {
	if len(instances) == 0 {
		return 0
	}
	completed := 0
	for _, inst := range instances {
		if inst.State == StateCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(instances)) * 100
}

func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}
