package repository

import (
	"context"
	"time"

	"slotwise/internal/domain"

	"gorm.io/gorm"
)

const sessionBatchSize = 100

type ClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

type classModel struct {
	ID                int64      `gorm:"column:id;primaryKey"`
	SeriesID          string     `gorm:"column:series_id;uniqueIndex;not null"`
	OrganizationID    int64      `gorm:"column:organization_id;index;not null"`
	LocationID        int64      `gorm:"column:location_id;not null"`
	FacilityID        *int64     `gorm:"column:facility_id;index"`
	IsInFacility      bool       `gorm:"column:is_in_facility;not null"`
	Name              string     `gorm:"column:name;not null"`
	Instructor        *string    `gorm:"column:instructor"`
	StartDate         time.Time  `gorm:"column:start_date;not null"`
	StartTime         string     `gorm:"column:start_time;not null"`
	DurationMinutes   int        `gorm:"column:duration_minutes;not null"`
	RecurrencePattern *string    `gorm:"column:recurrence_pattern"`
	SkipDays          []string   `gorm:"column:skip_days;serializer:json"`
	EndDate           *time.Time `gorm:"column:end_date"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
}

func (classModel) TableName() string { return "classes" }

type classSessionModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	ClassID    int64     `gorm:"column:class_id;index;not null"`
	FacilityID *int64    `gorm:"column:facility_id;index:idx_class_sessions_facility_time,priority:1"`
	LocationID int64     `gorm:"column:location_id;not null"`
	StartTime  time.Time `gorm:"column:start_time;not null;index:idx_class_sessions_facility_time,priority:2"`
	EndTime    time.Time `gorm:"column:end_time;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (classSessionModel) TableName() string { return "class_sessions" }

// sessionRow is a class session joined with its class name.
type sessionRow struct {
	ID         int64
	ClassID    int64
	ClassName  string
	FacilityID *int64
	LocationID int64
	StartTime  time.Time
	EndTime    time.Time
	CreatedAt  time.Time
}

func toClassModel(c *domain.Class) classModel {
	var endDate *time.Time
	if c.EndDate != nil {
		v := c.EndDate.UTC()
		endDate = &v
	}
	return classModel{
		ID:                c.ID,
		SeriesID:          c.SeriesID,
		OrganizationID:    c.OrganizationID,
		LocationID:        c.LocationID,
		FacilityID:        c.FacilityID,
		IsInFacility:      c.IsInFacility,
		Name:              c.Name,
		Instructor:        optional(c.Instructor),
		StartDate:         c.StartDate.UTC(),
		StartTime:         c.StartTime,
		DurationMinutes:   c.DurationMinutes,
		RecurrencePattern: optional(c.RecurrencePattern),
		SkipDays:          c.SkipDays,
		EndDate:           endDate,
		CreatedAt:         c.CreatedAt,
	}
}

func toDomainClass(m classModel) *domain.Class {
	return &domain.Class{
		ID:                m.ID,
		SeriesID:          m.SeriesID,
		OrganizationID:    m.OrganizationID,
		LocationID:        m.LocationID,
		FacilityID:        m.FacilityID,
		IsInFacility:      m.IsInFacility,
		Name:              m.Name,
		Instructor:        deref(m.Instructor),
		StartDate:         m.StartDate.UTC(),
		StartTime:         m.StartTime,
		DurationMinutes:   m.DurationMinutes,
		RecurrencePattern: deref(m.RecurrencePattern),
		SkipDays:          m.SkipDays,
		EndDate:           m.EndDate,
		CreatedAt:         m.CreatedAt,
	}
}

func toDomainSession(m classSessionModel, className string) domain.ClassSession {
	return domain.ClassSession{
		ID:         m.ID,
		ClassID:    m.ClassID,
		ClassName:  className,
		FacilityID: m.FacilityID,
		LocationID: m.LocationID,
		StartTime:  m.StartTime.UTC(),
		EndTime:    m.EndTime.UTC(),
		CreatedAt:  m.CreatedAt,
	}
}

// Create inserts the class and all of its sessions. Callers that need the insert to be atomic
// with other writes run it inside Store.WithFacilityLock.
func (r *ClassRepository) Create(ctx context.Context, c *domain.Class) error {
	m := toClassModel(c)
	db := r.db.WithContext(ctx)
	if err := db.Create(&m).Error; err != nil {
		return mapError(err)
	}

	sessions := make([]classSessionModel, 0, len(c.Sessions))
	for _, s := range c.Sessions {
		sessions = append(sessions, classSessionModel{
			ClassID:    m.ID,
			FacilityID: m.FacilityID,
			LocationID: m.LocationID,
			StartTime:  s.StartTime.UTC(),
			EndTime:    s.EndTime.UTC(),
		})
	}
	if len(sessions) > 0 {
		if err := db.CreateInBatches(&sessions, sessionBatchSize).Error; err != nil {
			return mapError(err)
		}
	}

	created := toDomainClass(m)
	created.Sessions = make([]domain.ClassSession, 0, len(sessions))
	for _, s := range sessions {
		created.Sessions = append(created.Sessions, toDomainSession(s, m.Name))
	}
	*c = *created
	return nil
}

func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*domain.Class, error) {
	var m classModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, mapError(err)
	}

	var sessions []classSessionModel
	err := r.db.WithContext(ctx).
		Where("class_id = ?", id).
		Order("start_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	c := toDomainClass(m)
	c.Sessions = make([]domain.ClassSession, 0, len(sessions))
	for _, s := range sessions {
		c.Sessions = append(c.Sessions, toDomainSession(s, m.Name))
	}
	return c, nil
}

// SessionsInRange returns the facility-bound class sessions that overlap [from, to), ordered by start time.
func (r *ClassRepository) SessionsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.ClassSession, error) {
	var rows []sessionRow
	err := r.db.WithContext(ctx).
		Table("class_sessions AS s").
		Select("s.id, s.class_id, c.name AS class_name, s.facility_id, s.location_id, s.start_time, s.end_time, s.created_at").
		Joins("JOIN classes c ON c.id = s.class_id").
		Where("s.facility_id = ?", facilityID).
		Where("s.start_time < ? AND s.end_time > ?", to.UTC(), from.UTC()).
		Order("s.start_time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClassSession, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ClassSession{
			ID:         row.ID,
			ClassID:    row.ClassID,
			ClassName:  row.ClassName,
			FacilityID: row.FacilityID,
			LocationID: row.LocationID,
			StartTime:  row.StartTime.UTC(),
			EndTime:    row.EndTime.UTC(),
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}
