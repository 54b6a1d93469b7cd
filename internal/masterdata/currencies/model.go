// Package currencies maintains the currency master list used by quotations,
// cash advances, and invoices.
package currencies

// Currency is one ISO 4217 currency with its display symbol.
type Currency struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	IsActive bool   `json:"is_active"`
}

type CreateCurrencyRequest struct {
	Code   string `json:"code" validate:"required,len=3,uppercase"`
	Name   string `json:"name" validate:"required,max=80"`
	Symbol string `json:"symbol" validate:"required,max=8"`
}

type UpdateCurrencyRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=80"`
	Symbol   *string `json:"symbol,omitempty" validate:"omitempty,max=8"`
	IsActive *bool   `json:"is_active,omitempty"`
}
