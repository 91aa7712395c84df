package classes

import (
	"context"

	"slotwise/internal/domain"
	"slotwise/internal/repository"
)

type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
}

type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
}

type ClassRepository interface {
	Create(ctx context.Context, c *domain.Class) error
	GetByID(ctx context.Context, id int64) (*domain.Class, error)
}

type ScheduleLocker interface {
	WithFacilityLock(ctx context.Context, facilityID int64, fn func(tx repository.FacilityTx) error) error
}
