package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Occupies reports whether a booking in this status holds its time slot.
func (s BookingStatus) Occupies() bool {
	return s == BookingPending || s == BookingConfirmed
}

// ActiveBookingStatuses are the statuses that count for conflicts and availability.
func ActiveBookingStatuses() []string {
	return []string{string(BookingPending), string(BookingConfirmed)}
}

type Booking struct {
	ID                 int64         `json:"id"`
	OrganizationID     int64         `json:"organization_id"`
	FacilityID         int64         `json:"facility_id" validate:"required"`
	LocationID         int64         `json:"location_id" validate:"required"`
	UserID             int64         `json:"user_id,omitempty"`
	StartTime          time.Time     `json:"start_time" validate:"required"`
	EndTime            time.Time     `json:"end_time" validate:"required,gtfield=StartTime"`
	Status             BookingStatus `json:"status"`
	CustomerName       string        `json:"customer_name,omitempty"`
	CustomerEmail      string        `json:"customer_email,omitempty"`
	CustomerPhone      string        `json:"customer_phone,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}
