package catalog

import (
	"context"

	"slotwise/internal/domain"
	"slotwise/internal/repository"
)

type FacilityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
	ListByLocation(ctx context.Context, locationID int64, f repository.FacilityFilters) ([]domain.Facility, int64, error)
	Create(ctx context.Context, f *domain.Facility) error
}

type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
	Create(ctx context.Context, l *domain.Location) error
}

type OrganizationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
}
