// model/car.go
package model

import "time"

type Car struct {
	ID           int64     `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	LicensePlate string    `json:"license_plate"`
	DailyRate    float64   `json:"daily_rate"`
	ImageURL     string    `json:"image_url"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

// CarSummary is the shape joined into a customer's rental list.
type CarSummary struct {
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	ImageURL  string  `json:"image_url,omitempty"`
	DailyRate float64 `json:"daily_rate,omitempty"`
}
