package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"slotwise/internal/domain"
	"slotwise/internal/repository"
)

// Service contains all business logic for authentication
type Service struct {
	users     UserRepository
	registrar OrganizationRegistrar
	tokens    TokenIssuer
	log       *slog.Logger
	cost      int
}

func NewService(users UserRepository, registrar OrganizationRegistrar, tokens TokenIssuer, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		registrar: registrar,
		tokens:    tokens,
		log:       log,
		cost:      bcrypt.DefaultCost,
	}
}

// RegisterCustomer creates a customer account that can book facilities.
func (s *Service) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*AuthResult, error) {
	if err := s.validateEmailUnique(ctx, req.Email); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.log.Info("customer registered", "user_id", user.ID)
	return s.issue(user, nil)
}

// RegisterOrganization creates a trialing organization and its owner.
func (s *Service) RegisterOrganization(ctx context.Context, req RegisterOrganizationRequest) (*AuthResult, error) {
	if err := s.validateEmailUnique(ctx, req.Email); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	org := &domain.Organization{
		Name:               strings.TrimSpace(req.OrganizationName),
		SubscriptionStatus: domain.SubscriptionTrialing,
	}
	owner := &domain.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := s.registrar.RegisterOrganization(ctx, org, owner); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.log.Info("organization registered", "organization_id", org.ID, "owner_id", owner.ID)
	return s.issue(owner, org)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("login failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return s.issue(user, nil)
}

func (s *Service) Me(ctx context.Context, userID int64) (*UserPublic, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	out := toPublic(user)
	return &out, nil
}

func (s *Service) issue(user *domain.User, org *domain.Organization) (*AuthResult, error) {
	var orgID int64
	if user.OrganizationID != nil {
		orgID = *user.OrganizationID
	}
	token, err := s.tokens.GenerateToken(user.ID, orgID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: toPublic(user), Organization: org, Token: token}, nil
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailAlreadyExists
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
