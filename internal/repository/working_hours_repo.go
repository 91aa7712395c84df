package repository

import (
	"context"
	"errors"

	"slotwise/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkingHoursRepository interface {
	GetByOrganizationID(ctx context.Context, organizationID int64) (*domain.OrganizationWorkingHours, error)
	Upsert(ctx context.Context, hours *domain.OrganizationWorkingHours) error
	HoursFor(ctx context.Context, organizationID int64) ([]domain.WorkingHours, error)
}

type workingHoursRepository struct {
	db *gorm.DB
}

func NewWorkingHoursRepository(db *gorm.DB) WorkingHoursRepository {
	return &workingHoursRepository{db: db}
}

// GetByOrganizationID returns the stored schedule or the default one when none was saved.
func (r *workingHoursRepository) GetByOrganizationID(ctx context.Context, organizationID int64) (*domain.OrganizationWorkingHours, error) {
	var hours domain.OrganizationWorkingHours
	err := r.db.WithContext(ctx).Where("organization_id = ?", organizationID).First(&hours).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.OrganizationWorkingHours{
				OrganizationID: organizationID,
				Hours:          domain.DefaultWorkingHours(),
			}, nil
		}
		return nil, err
	}
	if len(hours.Hours) == 0 {
		hours.Hours = domain.DefaultWorkingHours()
	}
	return &hours, nil
}

func (r *workingHoursRepository) Upsert(ctx context.Context, hours *domain.OrganizationWorkingHours) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"hours"}),
		}).
		Create(hours).Error
}

func (r *workingHoursRepository) HoursFor(ctx context.Context, organizationID int64) ([]domain.WorkingHours, error) {
	hours, err := r.GetByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return hours.Hours, nil
}
