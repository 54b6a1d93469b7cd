// Package ports maintains the port master list parametrizing booking and
// quotation forms.
package ports

// Port is one seaport or airport bookings can reference.
type Port struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	IsActive bool   `json:"is_active"`
}

type CreatePortRequest struct {
	Code    string `json:"code" validate:"required,min=3,max=10,uppercase"`
	Name    string `json:"name" validate:"required,max=120"`
	Country string `json:"country" validate:"required,max=80"`
}

type UpdatePortRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Country  *string `json:"country,omitempty" validate:"omitempty,max=80"`
	IsActive *bool   `json:"is_active,omitempty"`
}
