// Package cashadvance manages operational cash advances: request, approval,
// release of funds, and liquidation against actual expenses.
package cashadvance

import (
	"math"
	"time"
)

type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusApproved   Status = "APPROVED"
	StatusReleased   Status = "RELEASED"
	StatusLiquidated Status = "LIQUIDATED"
	StatusRejected   Status = "REJECTED"
)

// CanTransition reports whether the lifecycle allows moving to target.
// Rejection is only possible before funds move.
func (s Status) CanTransition(target Status) bool {
	switch s {
	case StatusRequested:
		return target == StatusApproved || target == StatusRejected
	case StatusApproved:
		return target == StatusReleased
	case StatusReleased:
		return target == StatusLiquidated
	default:
		return false
	}
}

// Category marks whether the advance must be liquidated with receipts.
type Category string

const (
	CategoryReceipted    Category = "receipted"
	CategoryNonReceipted Category = "non_receipted"
)

// CashAdvance is one advance moving through request to liquidation.
type CashAdvance struct {
	ID              int64      `json:"id"`
	DocNumber       string     `json:"doc_number"`
	Category        Category   `json:"category"`
	Purpose         string     `json:"purpose"`
	BookingID       *int64     `json:"booking_id,omitempty"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
	Status          Status     `json:"status"`
	RequestedBy     int64      `json:"requested_by"`
	RequestedAt     time.Time  `json:"requested_at"`
	ApprovedBy      *int64     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *int64     `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ReleasedBy      *int64     `json:"released_by,omitempty"`
	ReleasedAt      *time.Time `json:"released_at,omitempty"`
	LiquidatedAt    *time.Time `json:"liquidated_at,omitempty"`
	ExpenseTotal    float64    `json:"expense_total"`
	Balance         float64    `json:"balance"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Expenses        []Expense  `json:"expenses,omitempty"`
}

// Expense is one liquidation line against an advance.
type Expense struct {
	ID          int64     `json:"id"`
	AdvanceID   int64     `json:"advance_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	ReceiptRef  *string   `json:"receipt_ref,omitempty"`
	SpentAt     time.Time `json:"spent_at"`
}

// Settlement summarises what the liquidation balance means for the cashier:
// a positive balance comes back as a refund, a negative one is reimbursed to
// the requester.
type Settlement string

const (
	SettlementEven      Settlement = "settled"
	SettlementRefund    Settlement = "refund_due"
	SettlementReimburse Settlement = "reimbursement_due"
)

// Balances settle at centavo precision. Anything below half a centavo is
// float64 noise, not money.
const centEpsilon = 0.005

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Settle classifies a liquidation balance.
func Settle(balance float64) Settlement {
	switch {
	case balance >= centEpsilon:
		return SettlementRefund
	case balance <= -centEpsilon:
		return SettlementReimburse
	default:
		return SettlementEven
	}
}
