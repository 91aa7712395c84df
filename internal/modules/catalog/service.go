package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"slotwise/internal/domain"
	"slotwise/internal/repository"
	"slotwise/internal/scheduling"
)

type Service struct {
	facilities    FacilityRepository
	locations     LocationRepository
	organizations OrganizationRepository
	hours         repository.WorkingHoursRepository
	log           *slog.Logger
}

func NewService(
	facilities FacilityRepository,
	locations LocationRepository,
	organizations OrganizationRepository,
	hours repository.WorkingHoursRepository,
	log *slog.Logger,
) *Service {
	return &Service{
		facilities:    facilities,
		locations:     locations,
		organizations: organizations,
		hours:         hours,
		log:           log,
	}
}

/* ---------- FACILITIES ---------- */

func (s *Service) ListFacilities(ctx context.Context, locationID int64, page, limit int) (*FacilityList, error) {
	if _, err := s.location(ctx, locationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	items, total, err := s.facilities.ListByLocation(ctx, locationID, repository.FacilityFilters{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Facility{}
	}
	return &FacilityList{
		Facilities: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// GetFacility returns an active facility with its location.
func (s *Service) GetFacility(ctx context.Context, id int64) (*domain.Facility, error) {
	f, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	if !f.IsActive {
		return nil, ErrFacilityNotFound
	}
	return f, nil
}

func (s *Service) CreateFacility(ctx context.Context, actor domain.Actor, locationID int64, req CreateFacilityRequest) (*domain.Facility, error) {
	l, err := s.location(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleOwner || !actor.Manages(l.OrganizationID) {
		return nil, ErrForbidden
	}

	f := &domain.Facility{
		OrganizationID: l.OrganizationID,
		LocationID:     l.ID,
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
		IsActive:       true,
	}
	if err := s.facilities.Create(ctx, f); err != nil {
		return nil, err
	}
	f.Location = l
	s.log.Info("facility created", "facility_id", f.ID, "location_id", l.ID)
	return f, nil
}

/* ---------- LOCATIONS ---------- */

func (s *Service) CreateLocation(ctx context.Context, actor domain.Actor, req CreateLocationRequest) (*domain.Location, error) {
	if actor.Role != domain.RoleOwner || actor.OrganizationID == 0 {
		return nil, ErrForbidden
	}
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrValidation, tz)
	}

	l := &domain.Location{
		OrganizationID: actor.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		Address:        strings.TrimSpace(req.Address),
		Timezone:       tz,
	}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, err
	}
	s.log.Info("location created", "location_id", l.ID, "organization_id", l.OrganizationID)
	return l, nil
}

func (s *Service) location(ctx context.Context, id int64) (*domain.Location, error) {
	l, err := s.locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return l, nil
}

/* ---------- WORKING HOURS ---------- */

// GetWorkingHours returns the saved weekly schedule, or the default one.
func (s *Service) GetWorkingHours(ctx context.Context, organizationID int64) (*domain.OrganizationWorkingHours, error) {
	if err := s.organizationExists(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.hours.GetByOrganizationID(ctx, organizationID)
}

// UpdateWorkingHours replaces the weekly schedule. Every weekday must appear exactly once and
// an open day must close after it opens.
func (s *Service) UpdateWorkingHours(ctx context.Context, actor domain.Actor, organizationID int64, req UpdateWorkingHoursRequest) (*domain.OrganizationWorkingHours, error) {
	if actor.Role != domain.RoleOwner || !actor.Manages(organizationID) {
		return nil, ErrForbidden
	}
	if err := s.organizationExists(ctx, organizationID); err != nil {
		return nil, err
	}

	hours, err := normalizeHours(req.Hours)
	if err != nil {
		return nil, err
	}
	wh := &domain.OrganizationWorkingHours{OrganizationID: organizationID, Hours: hours}
	if err := s.hours.Upsert(ctx, wh); err != nil {
		return nil, err
	}
	s.log.Info("working hours updated", "organization_id", organizationID)
	return s.hours.GetByOrganizationID(ctx, organizationID)
}

func (s *Service) organizationExists(ctx context.Context, id int64) error {
	if _, err := s.organizations.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	return nil
}

func normalizeHours(days []WorkingHoursDay) ([]domain.WorkingHours, error) {
	if len(days) != 7 {
		return nil, fmt.Errorf("%w: hours must list all 7 weekdays", ErrValidation)
	}
	out := make([]domain.WorkingHours, 7)
	seen := [7]bool{}
	for _, d := range days {
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: day_of_week must be 0..6", ErrValidation)
		}
		if seen[d.DayOfWeek] {
			return nil, fmt.Errorf("%w: day_of_week %d listed twice", ErrValidation, d.DayOfWeek)
		}
		seen[d.DayOfWeek] = true

		wh := domain.WorkingHours{DayOfWeek: d.DayOfWeek, IsClosed: d.IsClosed}
		if !d.IsClosed {
			open, err := scheduling.ParseClock(d.OpenTime)
			if err != nil {
				return nil, fmt.Errorf("%w: open_time for day %d", ErrValidation, d.DayOfWeek)
			}
			closing, err := scheduling.ParseClock(d.CloseTime)
			if err != nil {
				return nil, fmt.Errorf("%w: close_time for day %d", ErrValidation, d.DayOfWeek)
			}
			if open.String() >= closing.String() {
				return nil, fmt.Errorf("%w: day %d must close after it opens", ErrValidation, d.DayOfWeek)
			}
			wh.OpenTime, wh.CloseTime = open.String(), closing.String()
		}
		out[d.DayOfWeek] = wh
	}
	return out, nil
}
