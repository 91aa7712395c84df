package booking

import (
	"context"
	"time"

	"slotwise/internal/domain"
	"slotwise/internal/repository"
)

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ActiveBookingsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error)
	ListByFacility(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, reason string) error
}

type SessionReader interface {
	SessionsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.ClassSession, error)
}

type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

type WorkingHoursReader interface {
	HoursFor(ctx context.Context, organizationID int64) ([]domain.WorkingHours, error)
}

// ScheduleLocker runs fn with the facility's schedule locked; see repository.Store.
type ScheduleLocker interface {
	WithFacilityLock(ctx context.Context, facilityID int64, fn func(tx repository.FacilityTx) error) error
}
