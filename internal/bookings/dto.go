package bookings

import "time"

type CreateBookingRequest struct {
	ServiceType   string    `json:"service_type" validate:"required,oneof=import domestic_trucking domestic_forwarding"`
	CustomerName  string    `json:"customer_name" validate:"required,max=200"`
	Consignee     *string   `json:"consignee,omitempty" validate:"omitempty,max=200"`
	OriginPort    string    `json:"origin_port" validate:"required,max=120"`
	DestPort      string    `json:"destination_port" validate:"required,max=120"`
	Commodity     string    `json:"commodity" validate:"required,max=200"`
	GrossWeightKg float64   `json:"gross_weight_kg" validate:"gte=0"`
	VolumeCbm     float64   `json:"volume_cbm" validate:"gte=0"`
	ContainerQty  int       `json:"container_qty" validate:"gte=0"`
	BookingDate   time.Time `json:"booking_date" validate:"required"`
	Remarks       *string   `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

type UpdateBookingRequest struct {
	CustomerName  *string  `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	Consignee     *string  `json:"consignee,omitempty" validate:"omitempty,max=200"`
	OriginPort    *string  `json:"origin_port,omitempty" validate:"omitempty,max=120"`
	DestPort      *string  `json:"destination_port,omitempty" validate:"omitempty,max=120"`
	Commodity     *string  `json:"commodity,omitempty" validate:"omitempty,max=200"`
	GrossWeightKg *float64 `json:"gross_weight_kg,omitempty" validate:"omitempty,gte=0"`
	VolumeCbm     *float64 `json:"volume_cbm,omitempty" validate:"omitempty,gte=0"`
	ContainerQty  *int     `json:"container_qty,omitempty" validate:"omitempty,gte=0"`
	Remarks       *string  `json:"remarks,omitempty" validate:"omitempty,max=2000"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}
