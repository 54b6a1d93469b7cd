package billing

import "time"

type CreateInvoiceRequest struct {
	BookingID    *int64    `json:"booking_id,omitempty" validate:"omitempty,gt=0"`
	CustomerName string    `json:"customer_name" validate:"required,max=200"`
	Currency     string    `json:"currency" validate:"required,len=3"`
	TotalAmount  float64   `json:"total_amount" validate:"required,gt=0"`
	InvoiceDate  time.Time `json:"invoice_date" validate:"required"`
	DueDate      time.Time `json:"due_date" validate:"required"`
	Notes        *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type PaymentRequest struct {
	Amount    float64   `json:"amount" validate:"required,gt=0"`
	Method    string    `json:"method" validate:"required,oneof=cash check bank_transfer"`
	Reference *string   `json:"reference,omitempty" validate:"omitempty,max=100"`
	PaidAt    time.Time `json:"paid_at" validate:"required"`
}
