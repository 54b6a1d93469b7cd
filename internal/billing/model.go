// Package billing manages customer invoices, payments applied against them,
// and the collection monitoring views built from outstanding balances.
package billing

import "time"

type InvoiceStatus string

const (
	StatusDraft         InvoiceStatus = "DRAFT"
	StatusBilled        InvoiceStatus = "BILLED"
	StatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	StatusPaid          InvoiceStatus = "PAID"
)

// Invoice is one billing document raised against a booking.
type Invoice struct {
	ID           int64         `json:"id"`
	DocNumber    string        `json:"doc_number"`
	BookingID    *int64        `json:"booking_id,omitempty"`
	CustomerName string        `json:"customer_name"`
	Currency     string        `json:"currency"`
	TotalAmount  float64       `json:"total_amount"`
	AmountPaid   float64       `json:"amount_paid"`
	Status       InvoiceStatus `json:"status"`
	InvoiceDate  time.Time     `json:"invoice_date"`
	DueDate      time.Time     `json:"due_date"`
	Notes        *string       `json:"notes,omitempty"`
	CreatedBy    int64         `json:"created_by"`
	BilledAt     *time.Time    `json:"billed_at,omitempty"`
	PaidAt       *time.Time    `json:"paid_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Payments     []Payment     `json:"payments,omitempty"`
}

// Outstanding returns the unpaid remainder at centavo precision.
func (i Invoice) Outstanding() float64 {
	return RoundCents(i.TotalAmount - i.AmountPaid)
}

// Payment is one collection applied against an invoice.
type Payment struct {
	ID        int64     `json:"id"`
	InvoiceID int64     `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Reference *string   `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}

// AgingBucket summarises outstanding balances by days overdue.
type AgingBucket struct {
	Current   float64 `json:"current"`
	Bucket30  float64 `json:"bucket_30"`
	Bucket60  float64 `json:"bucket_60"`
	Bucket90  float64 `json:"bucket_90"`
	Bucket120 float64 `json:"bucket_120"`
}

// Total sums every bucket.
func (b AgingBucket) Total() float64 {
	return b.Current + b.Bucket30 + b.Bucket60 + b.Bucket90 + b.Bucket120
}

// Age adds an outstanding amount to the bucket for its days overdue.
func (b *AgingBucket) Age(outstanding float64, dueDate, asOf time.Time) {
	days := int(asOf.Sub(dueDate).Hours() / 24)
	switch {
	case days <= 0:
		b.Current += outstanding
	case days <= 30:
		b.Bucket30 += outstanding
	case days <= 60:
		b.Bucket60 += outstanding
	case days <= 90:
		b.Bucket90 += outstanding
	default:
		b.Bucket120 += outstanding
	}
}
