package cashadvance

import "time"

type CreateAdvanceRequest struct {
	Category  string  `json:"category" validate:"required,oneof=receipted non_receipted"`
	Purpose   string  `json:"purpose" validate:"required,max=500"`
	BookingID *int64  `json:"booking_id,omitempty" validate:"omitempty,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"required,len=3"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type ExpenseRequest struct {
	Description string    `json:"description" validate:"required,max=200"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	ReceiptRef  *string   `json:"receipt_ref,omitempty" validate:"omitempty,max=100"`
	SpentAt     time.Time `json:"spent_at" validate:"required"`
}

type LiquidateRequest struct {
	Expenses []ExpenseRequest `json:"expenses" validate:"required,min=1,dive"`
}

// LiquidationResult reports the computed settlement alongside the record.
type LiquidationResult struct {
	Advance    CashAdvance `json:"advance"`
	Settlement Settlement  `json:"settlement"`
}
