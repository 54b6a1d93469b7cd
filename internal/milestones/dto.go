package milestones

import (
	"bytes"
	"fmt"
	"time"
)

// Flag marshals booleans as 0|1, the wire convention the SBCLC front end
// expects for is_required and is_active.
type Flag bool

// MarshalJSON renders the flag as 0 or 1.
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts 0/1 as well as JSON booleans.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("flag: invalid value %q", data)
	}
	return nil
}

// DefinitionResponse is the wire shape of a milestone definition.
type DefinitionResponse struct {
	MilestoneID      int64    `json:"milestone_id"`
	MilestoneName    string   `json:"milestone_name"`
	MilestoneCode    string   `json:"milestone_code"`
	ServiceType      string   `json:"service_type"`
	SequenceOrder    int      `json:"sequence_order"`
	EstimatedDays    float64  `json:"estimated_days"`
	NotifyBeforeDays float64  `json:"notify_before_days"`
	IsRequired       Flag     `json:"is_required"`
	IsActive         Flag     `json:"is_active"`
	Priority         Priority `json:"priority"`
	Description      string   `json:"description"`
}

// ToResponse converts a domain definition to its wire shape.
func ToResponse(d Definition) DefinitionResponse {
	return DefinitionResponse{
		MilestoneID:      d.ID,
		MilestoneName:    d.Name,
		MilestoneCode:    d.Code,
		ServiceType:      string(d.ServiceType),
		SequenceOrder:    d.SequenceOrder,
		EstimatedDays:    d.EstimatedDays,
		NotifyBeforeDays: d.NotifyBeforeDays,
		IsRequired:       Flag(d.Required),
		IsActive:         Flag(d.Active),
		Priority:         d.Priority,
		Description:      d.Description,
	}
}

// CreateDefinitionRequest carries a new milestone definition.
type CreateDefinitionRequest struct {
	ServiceType      string   `json:"service_type" validate:"required"`
	MilestoneCode    string   `json:"milestone_code" validate:"required,max=30"`
	MilestoneName    string   `json:"milestone_name" validate:"required,max=120"`
	SequenceOrder    int      `json:"sequence_order" validate:"required,gt=0"`
	EstimatedDays    float64  `json:"estimated_days" validate:"gte=0"`
	NotifyBeforeDays float64  `json:"notify_before_days" validate:"gte=0"`
	IsRequired       Flag     `json:"is_required"`
	IsActive         *Flag    `json:"is_active,omitempty"`
	Priority         Priority `json:"priority,omitempty"`
	Description      string   `json:"description,omitempty"`
}

// UpdateDefinitionRequest is a partial patch; nil fields are left unchanged.
type UpdateDefinitionRequest struct {
	MilestoneName    *string   `json:"milestone_name,omitempty" validate:"omitempty,max=120"`
	SequenceOrder    *int      `json:"sequence_order,omitempty" validate:"omitempty,gt=0"`
	EstimatedDays    *float64  `json:"estimated_days,omitempty" validate:"omitempty,gte=0"`
	NotifyBeforeDays *float64  `json:"notify_before_days,omitempty" validate:"omitempty,gte=0"`
	IsRequired       *Flag     `json:"is_required,omitempty"`
	IsActive         *Flag     `json:"is_active,omitempty"`
	Priority         *Priority `json:"priority,omitempty"`
	Description      *string   `json:"description,omitempty"`
}

// TransitionRequest moves a booking milestone to a new state.
type TransitionRequest struct {
	State InstanceState `json:"state" validate:"required"`
	Note  string        `json:"note,omitempty" validate:"max=500"`
	At    *time.Time    `json:"at,omitempty"`
}
