// model/rental.go
package model

import "time"

type RentalStatus string

const (
	RentalConfirmed RentalStatus = "confirmed"
	RentalCancelled RentalStatus = "cancelled"
	RentalCompleted RentalStatus = "completed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s RentalStatus) Terminal() bool {
	return s == RentalCancelled || s == RentalCompleted
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalConfirmed, RentalCancelled, RentalCompleted:
		return true
	}
	return false
}

type Rental struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	CarID     int64        `json:"car_id"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	TotalCost float64      `json:"total_cost"`
	Status    RentalStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}
