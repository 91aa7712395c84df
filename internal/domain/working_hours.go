package domain

import "time"

// WorkingHours is the opening schedule of one weekday.
type WorkingHours struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"` // 0=Sunday
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

// OrganizationWorkingHours stores the weekly schedule of an organization.
type OrganizationWorkingHours struct {
	ID             int64          `json:"id" gorm:"primaryKey"`
	OrganizationID int64          `json:"organization_id" gorm:"uniqueIndex"`
	Hours          []WorkingHours `json:"hours" gorm:"serializer:json"`
}

func (OrganizationWorkingHours) TableName() string {
	return "organization_working_hours"
}

// DefaultWorkingHours is used when an organization never saved its schedule:
// Monday to Friday 09:00-21:00, weekends closed.
func DefaultWorkingHours() []WorkingHours {
	hours := make([]WorkingHours, 7)
	for i := 0; i < 7; i++ {
		hours[i] = WorkingHours{
			DayOfWeek: i,
			OpenTime:  "09:00",
			CloseTime: "21:00",
			IsClosed:  i == int(time.Sunday) || i == int(time.Saturday),
		}
	}
	return hours
}

// HoursFor picks the entry for a weekday; a missing entry counts as closed.
func HoursFor(hours []WorkingHours, day time.Weekday) WorkingHours {
	for _, h := range hours {
		if h.DayOfWeek == int(day) {
			return h
		}
	}
	return WorkingHours{DayOfWeek: int(day), IsClosed: true}
}
