package rental

// CreateRentalReq represents the booking payload; dates are YYYY-MM-DD.
// swagger:model CreateRentalReq
type CreateRentalReq struct {
	CarID     int64  `json:"car_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// UpdateStatusReq is the admin transition payload.
// swagger:model UpdateStatusReq
type UpdateStatusReq struct {
	Status string `json:"status" validate:"required"`
}
