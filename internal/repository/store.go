package repository

import (
	"context"
	"fmt"
	"time"

	"slotwise/internal/domain"

	"gorm.io/gorm"
)

// FacilityTx is the set of reads and writes available while a facility is locked.
type FacilityTx interface {
	ActiveBookingsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error)
	SessionsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.ClassSession, error)
	CreateBooking(ctx context.Context, b *domain.Booking) error
	CancelBooking(ctx context.Context, id int64, reason string) error
	CreateClass(ctx context.Context, c *domain.Class) error
}

// Store groups the repositories that share one database handle.
type Store struct {
	db            *gorm.DB
	Bookings      *BookingRepository
	Classes       *ClassRepository
	Facilities    *FacilityRepository
	Locations     *LocationRepository
	Organizations *OrganizationRepository
	Users         *UserRepository
	WorkingHours  WorkingHoursRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Bookings:      NewBookingRepository(db),
		Classes:       NewClassRepository(db),
		Facilities:    NewFacilityRepository(db),
		Locations:     NewLocationRepository(db),
		Organizations: NewOrganizationRepository(db),
		Users:         NewUserRepository(db),
		WorkingHours:  NewWorkingHoursRepository(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// WithFacilityLock runs fn in a single transaction that holds an exclusive lock on the facility's
// schedule. On PostgreSQL the lock is a transaction-scoped advisory lock; SQLite serialises writers
// on its own. Any error from fn rolls the whole transaction back.
func (s *Store) WithFacilityLock(ctx context.Context, facilityID int64, fn func(tx FacilityTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", fmt.Sprintf("facility:%d", facilityID)).Error; err != nil {
				return fmt.Errorf("lock facility %d: %w", facilityID, err)
			}
		}
		return fn(facilityTx{
			bookings: NewBookingRepository(tx),
			classes:  NewClassRepository(tx),
		})
	})
}

type facilityTx struct {
	bookings *BookingRepository
	classes  *ClassRepository
}

func (t facilityTx) ActiveBookingsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error) {
	return t.bookings.ActiveBookingsInRange(ctx, facilityID, from, to)
}

func (t facilityTx) SessionsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.ClassSession, error) {
	return t.classes.SessionsInRange(ctx, facilityID, from, to)
}

func (t facilityTx) CreateBooking(ctx context.Context, b *domain.Booking) error {
	return t.bookings.Create(ctx, b)
}

func (t facilityTx) CancelBooking(ctx context.Context, id int64, reason string) error {
	return t.bookings.Cancel(ctx, id, reason)
}

func (t facilityTx) CreateClass(ctx context.Context, c *domain.Class) error {
	return t.classes.Create(ctx, c)
}

// ActiveBookingsInRange and SessionsInRange make Store a read-only conflict source outside any lock.
func (s *Store) ActiveBookingsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error) {
	return s.Bookings.ActiveBookingsInRange(ctx, facilityID, from, to)
}

func (s *Store) SessionsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.ClassSession, error) {
	return s.Classes.SessionsInRange(ctx, facilityID, from, to)
}

// RegisterOrganization creates the organization and its owner account in one transaction.
func (s *Store) RegisterOrganization(ctx context.Context, org *domain.Organization, owner *domain.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewOrganizationRepository(tx).Create(ctx, org); err != nil {
			return err
		}
		orgID := org.ID
		owner.OrganizationID = &orgID
		owner.Role = domain.RoleOwner
		return NewUserRepository(tx).Create(ctx, owner)
	})
}
