// Package bookings handles shipment booking intake and the monitoring views
// built on top of it.
package bookings

import (
	"time"

	"github.com/sbclc/sbclc/internal/milestones"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving to target is legal. Completed and
// cancelled bookings are terminal.
func (s Status) CanTransition(target Status) bool {
	if !target.IsValid() || s == target {
		return false
	}
	switch s {
	case StatusPending:
		return target == StatusInProgress || target == StatusCompleted || target == StatusCancelled
	case StatusInProgress:
		return target == StatusCompleted || target == StatusCancelled
	default:
		return false
	}
}

// Booking is one shipment job moving through the milestone checklist.
type Booking struct {
	ID            int64                  `json:"id"`
	BookingRef    string                 `json:"booking_ref"`
	ServiceType   milestones.ServiceType `json:"service_type"`
	Status        Status                 `json:"status"`
	CustomerName  string                 `json:"customer_name"`
	Consignee     *string                `json:"consignee,omitempty"`
	OriginPort    string                 `json:"origin_port"`
	DestPort      string                 `json:"destination_port"`
	Commodity     string                 `json:"commodity"`
	GrossWeightKg float64                `json:"gross_weight_kg"`
	VolumeCbm     float64                `json:"volume_cbm"`
	ContainerQty  int                    `json:"container_qty"`
	BookingDate   time.Time              `json:"booking_date"`
	Remarks       *string                `json:"remarks,omitempty"`
	CreatedBy     int64                  `json:"created_by"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ListFilter narrows the monitoring list.
type ListFilter struct {
	Status      Status
	ServiceType milestones.ServiceType
	DateFrom    time.Time
	DateTo      time.Time
	Search      string
	Limit       int
	Offset      int
}
