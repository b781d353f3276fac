package car

// CreateCarReq represents the admin car-creation payload
// swagger:model CreateCarReq
type CreateCarReq struct {
	Make         string  `json:"make" validate:"required"`
	Model        string  `json:"model" validate:"required"`
	Year         int     `json:"year" validate:"required,gt=0"`
	LicensePlate string  `json:"license_plate" validate:"required"`
	DailyRate    float64 `json:"daily_rate" validate:"required,gt=0"`
	ImageURL     string  `json:"image_url"`
}

// UpdateCarReq is the partial patch; unknown fields are ignored and the
// license plate and availability flag are not patchable.
// swagger:model UpdateCarReq
type UpdateCarReq struct {
	Make      *string  `json:"make"`
	Model     *string  `json:"model"`
	Year      *int     `json:"year"`
	DailyRate *float64 `json:"daily_rate"`
	ImageURL  *string  `json:"image_url"`
}
