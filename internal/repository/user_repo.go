package repository

import (
	"context"
	"strings"
	"time"

	"slotwise/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	OrganizationID *int64    `gorm:"column:organization_id;index"`
	Email          string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash   string    `gorm:"column:password_hash;not null"`
	Role           string    `gorm:"column:role;not null"`
	Name           string    `gorm:"column:name"`
	Phone          *string   `gorm:"column:phone"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		Role:           domain.UserRole(m.Role),
		Name:           m.Name,
		Phone:          deref(m.Phone),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:             u.ID,
		OrganizationID: u.OrganizationID,
		Email:          strings.TrimSpace(strings.ToLower(u.Email)),
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		Name:           u.Name,
		Phone:          optional(u.Phone),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return mapError(err)
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m).Error
	if err != nil {
		return nil, mapError(err)
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, mapError(err)
	}
	return toDomainUser(m), nil
}
