package rfp

import "time"

type CreateRFPRequest struct {
	Payee     string    `json:"payee" validate:"required,max=200"`
	Purpose   string    `json:"purpose" validate:"required,max=500"`
	BookingID *int64    `json:"booking_id,omitempty" validate:"omitempty,gt=0"`
	Amount    float64   `json:"amount" validate:"required,gt=0"`
	Currency  string    `json:"currency" validate:"required,len=3"`
	DueDate   time.Time `json:"due_date" validate:"required"`
}

type UpdateRFPRequest struct {
	Payee   *string    `json:"payee,omitempty" validate:"omitempty,max=200"`
	Purpose *string    `json:"purpose,omitempty" validate:"omitempty,max=500"`
	Amount  *float64   `json:"amount,omitempty" validate:"omitempty,gt=0"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type DisburseRequest struct {
	Method     string  `json:"payment_method" validate:"required,oneof=cash check bank_transfer"`
	PaymentRef *string `json:"payment_ref,omitempty" validate:"omitempty,max=100"`
}
