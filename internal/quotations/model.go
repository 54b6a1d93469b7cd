// Package quotations manages freight quotations: draft capture, charge
// lines, and the submit/approve/reject lifecycle.
package quotations

import (
	"time"

	"github.com/sbclc/sbclc/internal/milestones"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// CanTransition reports whether the lifecycle allows moving to target.
// Approved and rejected quotations are terminal.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusSubmitted
	case StatusSubmitted:
		return target == StatusApproved || target == StatusRejected
	default:
		return false
	}
}

// Quotation is a priced offer for a prospective booking.
type Quotation struct {
	ID              int64                  `json:"id"`
	DocNumber       string                 `json:"doc_number"`
	ServiceType     milestones.ServiceType `json:"service_type"`
	CustomerName    string                 `json:"customer_name"`
	OriginPort      string                 `json:"origin_port"`
	DestPort        string                 `json:"destination_port"`
	Currency        string                 `json:"currency"`
	Status          Status                 `json:"status"`
	QuoteDate       time.Time              `json:"quote_date"`
	ValidUntil      time.Time              `json:"valid_until"`
	TotalAmount     float64                `json:"total_amount"`
	Notes           *string                `json:"notes,omitempty"`
	CreatedBy       int64                  `json:"created_by"`
	SubmittedAt     *time.Time             `json:"submitted_at,omitempty"`
	ApprovedBy      *int64                 `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	RejectedBy      *int64                 `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time             `json:"rejected_at,omitempty"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Lines           []ChargeLine           `json:"lines,omitempty"`
}

// ChargeLine is one priced charge on a quotation.
type ChargeLine struct {
	ID          int64   `json:"id"`
	QuotationID int64   `json:"quotation_id"`
	Description string  `json:"description"`
	Basis       string  `json:"basis"`
	Quantity    float64 `json:"quantity"`
	UnitRate    float64 `json:"unit_rate"`
	Amount      float64 `json:"amount"`
	LineOrder   int     `json:"line_order"`
}

// LineAmount computes the charge for one line.
func LineAmount(quantity, unitRate float64) float64 {
	return quantity * unitRate
}
