package auth

import "slotwise/internal/domain"

type RegisterCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type RegisterOrganizationRequest struct {
	OrganizationName string `json:"organization_name" validate:"required,min=2,max=200"`
	Name             string `json:"name" validate:"required,min=2"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone"`
	Password         string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserPublic struct {
	ID             int64  `json:"id"`
	OrganizationID *int64 `json:"organization_id,omitempty"`
	Role           string `json:"role"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
}

func toPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Role:           string(u.Role),
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
	}
}

type AuthResult struct {
	User         UserPublic           `json:"user"`
	Organization *domain.Organization `json:"organization,omitempty"`
	Token        string               `json:"token"`
}
