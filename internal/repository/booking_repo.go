package repository

import (
	"context"
	"time"

	"slotwise/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	OrganizationID     int64      `gorm:"column:organization_id;index;not null"`
	FacilityID         int64      `gorm:"column:facility_id;not null;index:idx_bookings_facility_time,priority:1"`
	LocationID         int64      `gorm:"column:location_id;not null"`
	UserID             *int64     `gorm:"column:user_id;index"`
	StartTime          time.Time  `gorm:"column:start_time;not null;index:idx_bookings_facility_time,priority:2"`
	EndTime            time.Time  `gorm:"column:end_time;not null"`
	Status             string     `gorm:"column:status;not null;default:pending"`
	CustomerName       string     `gorm:"column:customer_name"`
	CustomerEmail      string     `gorm:"column:customer_email"`
	CustomerPhone      *string    `gorm:"column:customer_phone"`
	Notes              *string    `gorm:"column:notes"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDomainBooking(m bookingModel) *domain.Booking {
	var userID int64
	if m.UserID != nil {
		userID = *m.UserID
	}
	return &domain.Booking{
		ID:                 m.ID,
		OrganizationID:     m.OrganizationID,
		FacilityID:         m.FacilityID,
		LocationID:         m.LocationID,
		UserID:             userID,
		StartTime:          m.StartTime.UTC(),
		EndTime:            m.EndTime.UTC(),
		Status:             domain.BookingStatus(m.Status),
		CustomerName:       m.CustomerName,
		CustomerEmail:      m.CustomerEmail,
		CustomerPhone:      deref(m.CustomerPhone),
		Notes:              deref(m.Notes),
		CancellationReason: deref(m.CancellationReason),
		CancelledAt:        m.CancelledAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var userID *int64
	if b.UserID != 0 {
		v := b.UserID
		userID = &v
	}
	status := b.Status
	if status == "" {
		status = domain.BookingPending
	}
	return bookingModel{
		ID:                 b.ID,
		OrganizationID:     b.OrganizationID,
		FacilityID:         b.FacilityID,
		LocationID:         b.LocationID,
		UserID:             userID,
		StartTime:          b.StartTime.UTC(),
		EndTime:            b.EndTime.UTC(),
		Status:             string(status),
		CustomerName:       b.CustomerName,
		CustomerEmail:      b.CustomerEmail,
		CustomerPhone:      optional(b.CustomerPhone),
		Notes:              optional(b.Notes),
		CancellationReason: optional(b.CancellationReason),
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return mapError(err)
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, mapError(err)
	}
	return toDomainBooking(m), nil
}

// ActiveBookingsInRange returns pending and confirmed bookings of the facility that overlap [from, to),
// ordered by start time.
func (r *BookingRepository) ActiveBookingsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Where("status IN ?", domain.ActiveBookingStatuses()).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC()).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) ListByFacility(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC()).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// UpdateStatus moves a booking from one status to another. The write only applies while the row
// still has status from, so a transition decided on a stale read cannot overwrite a concurrent
// cancellation.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Where("status = ?", string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&bookingModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}

// Cancel moves an active booking to cancelled. Bookings that are already cancelled or completed
// are reported as ErrNotFound so a stale id never silently succeeds.
func (r *BookingRepository) Cancel(ctx context.Context, id int64, reason string) error {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Where("status IN ?", domain.ActiveBookingStatuses()).
		Updates(map[string]any{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": optional(reason),
			"cancelled_at":        now,
			"updated_at":          now,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireStalePending cancels pending bookings that started before the cutoff without being confirmed.
func (r *BookingRepository) ExpireStalePending(ctx context.Context, before time.Time, reason string) (int64, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("status = ?", string(domain.BookingPending)).
		Where("start_time < ?", before.UTC()).
		Updates(map[string]any{
			"status":              string(domain.BookingCancelled),
			"cancellation_reason": optional(reason),
			"cancelled_at":        now,
			"updated_at":          now,
		})
	return tx.RowsAffected, tx.Error
}
