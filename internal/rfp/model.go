// Package rfp manages requests for payment to vendors and agencies: draft,
// submission, approval, and disbursement of funds.
package rfp

import "time"

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusDisbursed Status = "DISBURSED"
	StatusRejected  Status = "REJECTED"
)

// CanTransition reports whether the lifecycle allows moving to target.
// Disbursed and rejected requests are terminal.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPending
	case StatusPending:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusDisbursed
	default:
		return false
	}
}

// PaymentMethod is how approved funds leave the company.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

// RFP is one request for payment.
type RFP struct {
	ID              int64          `json:"id"`
	DocNumber       string         `json:"doc_number"`
	Payee           string         `json:"payee"`
	Purpose         string         `json:"purpose"`
	BookingID       *int64         `json:"booking_id,omitempty"`
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency"`
	DueDate         time.Time      `json:"due_date"`
	Status          Status         `json:"status"`
	CreatedBy       int64          `json:"created_by"`
	SubmittedAt     *time.Time     `json:"submitted_at,omitempty"`
	ApprovedBy      *int64         `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectedBy      *int64         `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time     `json:"rejected_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	DisbursedBy     *int64         `json:"disbursed_by,omitempty"`
	DisbursedAt     *time.Time     `json:"disbursed_at,omitempty"`
	Method          *PaymentMethod `json:"payment_method,omitempty"`
	PaymentRef      *string        `json:"payment_ref,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
