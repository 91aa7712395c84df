package repository

import (
	"fmt"

	"slotwise/internal/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service uses. On PostgreSQL it also installs
// the exclusion constraint that keeps active bookings of one facility from overlapping.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Organization{},
		&domain.OrganizationWorkingHours{},
		&domain.Location{},
		&domain.Facility{},
		&userModel{},
		&bookingModel{},
		&classModel{},
		&classSessionModel{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return ensureBookingExclusion(db)
}

func ensureBookingExclusion(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	var exists int64
	err := db.Raw("SELECT COUNT(1) FROM pg_constraint WHERE conname = ?", "bookings_no_overlap").Scan(&exists).Error
	if err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}

	return db.Exec(`
ALTER TABLE bookings
  ADD CONSTRAINT bookings_no_overlap
  EXCLUDE USING gist (
    facility_id WITH =,
    tstzrange(start_time, end_time, '[)') WITH &&
  ) WHERE (status IN ('pending', 'confirmed'))
`).Error
}
