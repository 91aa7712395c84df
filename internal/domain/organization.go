package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type Organization struct {
	ID                 int64              `json:"id" gorm:"primaryKey"`
	Name               string             `json:"name" gorm:"not null"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status" gorm:"not null;default:trialing"`
	SubscriptionEndsAt *time.Time         `json:"subscription_ends_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// HasAccess reports whether the organization may use staff features at now.
func (o Organization) HasAccess(now time.Time) bool {
	switch o.SubscriptionStatus {
	case SubscriptionActive, SubscriptionTrialing:
		return o.SubscriptionEndsAt == nil || o.SubscriptionEndsAt.After(now)
	default:
		return false
	}
}

type Location struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	OrganizationID int64     `json:"organization_id" gorm:"index;not null"`
	Name           string    `json:"name" gorm:"not null"`
	Address        string    `json:"address,omitempty"`
	Timezone       string    `json:"timezone" gorm:"not null;default:UTC"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TimeLocation resolves the location's IANA zone, falling back to UTC.
func (l Location) TimeLocation() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Facility struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	OrganizationID int64     `json:"organization_id" gorm:"index;not null"`
	LocationID     int64     `json:"location_id" gorm:"index;not null"`
	Name           string    `json:"name" gorm:"not null"`
	Description    string    `json:"description,omitempty"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}
