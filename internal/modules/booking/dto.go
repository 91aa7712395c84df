package booking

import (
	"time"

	"slotwise/internal/domain"
	"slotwise/internal/scheduling"
)

type CreateBookingRequest struct {
	FacilityID    int64     `json:"facility_id" binding:"required"`
	LocationID    int64     `json:"location_id"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	CustomerName  string    `json:"customer_name" validate:"max=200"`
	CustomerEmail string    `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string    `json:"customer_phone" validate:"max=50"`
	Notes         string    `json:"notes" validate:"max=2000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type AvailabilityResponse struct {
	FacilityID int64             `json:"facility_id"`
	Date       string            `json:"date"`
	Timezone   string            `json:"timezone"`
	Duration   int               `json:"duration"`
	Slots      []scheduling.Slot `json:"slots"`
}

// ScheduleResponse lists every booking of a facility, any status, for local days From..To inclusive.
type ScheduleResponse struct {
	FacilityID int64            `json:"facility_id"`
	From       string           `json:"from"`
	To         string           `json:"to"`
	Timezone   string           `json:"timezone"`
	Bookings   []domain.Booking `json:"bookings"`
}
