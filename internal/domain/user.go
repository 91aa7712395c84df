package domain

import "time"

type UserRole string

const (
	RoleOwner    UserRole = "owner"
	RoleStaff    UserRole = "staff"
	RoleCustomer UserRole = "customer"
)

// IsStaff reports whether the role manages an organization's schedule.
func (r UserRole) IsStaff() bool {
	return r == RoleOwner || r == RoleStaff
}

type User struct {
	ID             int64     `json:"id"`
	OrganizationID *int64    `json:"organization_id,omitempty"`
	Email          string    `json:"email" validate:"required,email"`
	PasswordHash   string    `json:"-"`
	Role           UserRole  `json:"role"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID         int64
	OrganizationID int64
	Role           UserRole
}

// Manages reports whether the actor is staff of the given organization.
func (a Actor) Manages(organizationID int64) bool {
	return a.Role.IsStaff() && a.OrganizationID != 0 && a.OrganizationID == organizationID
}
