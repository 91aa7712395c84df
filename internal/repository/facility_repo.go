package repository

import (
	"context"

	"slotwise/internal/domain"

	"gorm.io/gorm"
)

type FacilityFilters struct {
	IncludeInactive bool
	Limit           int
	Offset          int
}

type FacilityRepository struct {
	db *gorm.DB
}

func NewFacilityRepository(db *gorm.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// GetByID fetches a facility together with its location
func (r *FacilityRepository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	var f domain.Facility
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("facilities.id = ?", id).
		First(&f).Error
	if err != nil {
		return nil, mapError(err)
	}
	return &f, nil
}

func (r *FacilityRepository) ListByLocation(ctx context.Context, locationID int64, f FacilityFilters) ([]domain.Facility, int64, error) {
	var facilities []domain.Facility
	var total int64

	q := r.db.WithContext(ctx).
		Model(&domain.Facility{}).
		Where("location_id = ?", locationID)
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	err := q.Order("name ASC").Find(&facilities).Error
	return facilities, total, err
}

func (r *FacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	return mapError(r.db.WithContext(ctx).Omit("Location").Create(f).Error)
}

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	var l domain.Location
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &l, nil
}

func (r *LocationRepository) Create(ctx context.Context, l *domain.Location) error {
	return mapError(r.db.WithContext(ctx).Create(l).Error)
}

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	var o domain.Organization
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &o, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, o *domain.Organization) error {
	return mapError(r.db.WithContext(ctx).Create(o).Error)
}
