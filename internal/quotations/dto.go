package quotations

import "time"

type ChargeLineRequest struct {
	Description string  `json:"description" validate:"required,max=200"`
	Basis       string  `json:"basis" validate:"required,oneof=per_container per_cbm per_kg per_shipment flat"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitRate    float64 `json:"unit_rate" validate:"gte=0"`
}

type CreateQuotationRequest struct {
	ServiceType  string              `json:"service_type" validate:"required,oneof=import domestic_trucking domestic_forwarding"`
	CustomerName string              `json:"customer_name" validate:"required,max=200"`
	OriginPort   string              `json:"origin_port" validate:"required,max=120"`
	DestPort     string              `json:"destination_port" validate:"required,max=120"`
	Currency     string              `json:"currency" validate:"required,len=3"`
	QuoteDate    time.Time           `json:"quote_date" validate:"required"`
	ValidUntil   time.Time           `json:"valid_until" validate:"required"`
	Notes        *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Lines        []ChargeLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateQuotationRequest replaces the mutable fields of a draft. Lines are
// replaced wholesale; partial line edits are a client concern.
type UpdateQuotationRequest struct {
	CustomerName *string             `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	OriginPort   *string             `json:"origin_port,omitempty" validate:"omitempty,max=120"`
	DestPort     *string             `json:"destination_port,omitempty" validate:"omitempty,max=120"`
	Currency     *string             `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidUntil   *time.Time          `json:"valid_until,omitempty"`
	Notes        *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Lines        []ChargeLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
