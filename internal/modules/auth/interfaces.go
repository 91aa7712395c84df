package auth

import (
	"context"

	"slotwise/internal/domain"
)

// UserRepository is the subset of the user store the auth service uses.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// OrganizationRegistrar creates an organization together with its owner.
type OrganizationRegistrar interface {
	RegisterOrganization(ctx context.Context, org *domain.Organization, owner *domain.User) error
}

type TokenIssuer interface {
	GenerateToken(userID, organizationID int64, role string) (string, error)
}
