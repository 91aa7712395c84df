package domain

import "time"

// Class is a (possibly recurring) scheduled class owned by an organization.
// Classes that are not bound to a facility never take part in facility conflict checks.
type Class struct {
	ID                int64      `json:"id"`
	SeriesID          string     `json:"series_id"`
	OrganizationID    int64      `json:"organization_id"`
	LocationID        int64      `json:"location_id"`
	FacilityID        *int64     `json:"facility_id,omitempty"`
	IsInFacility      bool       `json:"is_in_facility"`
	Name              string     `json:"name"`
	Instructor        string     `json:"instructor,omitempty"`
	StartDate         time.Time  `json:"start_date"`
	StartTime         string     `json:"start_time"`
	DurationMinutes   int        `json:"duration_minutes"`
	RecurrencePattern string     `json:"recurrence_pattern,omitempty"`
	SkipDays          []string   `json:"skip_days,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	Sessions []ClassSession `json:"sessions,omitempty"`
}

// ClassSession is one materialized occurrence of a class.
type ClassSession struct {
	ID         int64     `json:"id"`
	ClassID    int64     `json:"class_id"`
	ClassName  string    `json:"class_name,omitempty"`
	FacilityID *int64    `json:"facility_id,omitempty"`
	LocationID int64     `json:"location_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	CreatedAt  time.Time `json:"created_at"`
}
