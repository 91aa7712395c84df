package classes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"slotwise/internal/domain"
	"slotwise/internal/events"
	"slotwise/internal/pkg/tracing"
	"slotwise/internal/repository"
	"slotwise/internal/scheduling"
)

const dateLayout = "2006-01-02"

var tracer = tracing.Tracer("classes")

type Service struct {
	classes    ClassRepository
	facilities FacilityRepository
	locations  LocationRepository
	source     scheduling.ConflictSource
	locker     ScheduleLocker
	events     events.Publisher
	log        *slog.Logger
}

func NewService(
	classes ClassRepository,
	facilities FacilityRepository,
	locations LocationRepository,
	source scheduling.ConflictSource,
	locker ScheduleLocker,
	publisher events.Publisher,
	log *slog.Logger,
) *Service {
	return &Service{
		classes:    classes,
		facilities: facilities,
		locations:  locations,
		source:     source,
		locker:     locker,
		events:     publisher,
		log:        log,
	}
}

// CheckConflicts reports, without locking, which bookings and class sessions the proposed sessions overlap.
func (s *Service) CheckConflicts(ctx context.Context, actor domain.Actor, req CheckConflictsRequest) (resp *CheckConflictsResponse, err error) {
	ctx, span := tracer.Start(ctx, "classes.CheckConflicts", trace.WithAttributes(
		attribute.Int64("facility_id", req.FacilityID),
		attribute.Int("sessions", len(req.Sessions)),
	))
	defer func() { tracing.End(span, err) }()

	if err := scheduling.CheckSessionLimit(len(req.Sessions)); err != nil {
		return nil, err
	}
	proposed := make([]scheduling.Interval, 0, len(req.Sessions))
	for i, in := range req.Sessions {
		iv, err := scheduling.NewInterval(in.StartTime, in.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: session %d: end_time must be after start_time", ErrValidation, i)
		}
		proposed = append(proposed, iv)
	}

	f, err := s.facility(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	if !actor.Manages(f.OrganizationID) {
		return nil, ErrForbidden
	}

	report, err := scheduling.Check(ctx, s.source, f.ID, proposed)
	if err != nil {
		return nil, err
	}
	return newCheckConflictsResponse(report), nil
}

// CreateClass expands the recurrence and, for facility classes, re-checks conflicts under the facility
// lock, cancels the confirmed bookings and stores the class with its sessions in one transaction.
func (s *Service) CreateClass(ctx context.Context, actor domain.Actor, req CreateClassRequest) (*CreateClassResponse, error) {
	ctx, span := tracer.Start(ctx, "classes.CreateClass", trace.WithAttributes(
		attribute.Int64("organization_id", actor.OrganizationID),
		attribute.Int("cancel_booking_ids", len(req.CancelBookingIDs)),
	))
	resp, err := s.createClass(ctx, actor, req)
	tracing.End(span, err)
	return resp, err
}

func (s *Service) createClass(ctx context.Context, actor domain.Actor, req CreateClassRequest) (*CreateClassResponse, error) {
	facility, location, err := s.resolvePlace(ctx, req)
	if err != nil {
		return nil, err
	}
	if !actor.Manages(location.OrganizationID) {
		return nil, ErrForbidden
	}
	loc := location.TimeLocation()

	spec, err := buildSpec(req, loc)
	if err != nil {
		return nil, err
	}
	intervals, err := scheduling.Expand(spec)
	if err != nil {
		if errors.Is(err, scheduling.ErrTooManySessions) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(intervals) == 0 {
		return nil, ErrNoSessions
	}

	class := newClass(req, spec, location, facility, intervals)

	if facility == nil {
		if err := s.classes.Create(ctx, class); err != nil {
			return nil, &CommitError{ClassName: class.Name, Sessions: len(class.Sessions), Err: err}
		}
		s.committed(ctx, class, nil)
		return &CreateClassResponse{Class: class, CancelledBookingIDs: []int64{}}, nil
	}

	wf, err := scheduling.NewWorkflow(intervals)
	if err != nil {
		return nil, err
	}
	if wf, err = wf.BeginCheck(); err != nil {
		return nil, err
	}

	var cancelled []int64
	err = s.locker.WithFacilityLock(ctx, facility.ID, func(tx repository.FacilityTx) error {
		report, err := scheduling.Check(ctx, tx, facility.ID, intervals)
		if err != nil {
			return err
		}
		if wf, err = wf.Evaluate(report); err != nil {
			return err
		}

		switch wf.State {
		case scheduling.StateClassConflict:
			return &ConflictError{Kind: ErrClassConflict, Report: report}
		case scheduling.StateBookingConflict:
			if len(req.CancelBookingIDs) == 0 {
				return &ConflictError{Kind: ErrBookingConflict, Report: report}
			}
			confirmed, err := wf.ConfirmCancellation(req.CancelBookingIDs)
			if err != nil {
				return &ConflictError{Kind: ErrBookingConflict, Report: report, Mismatch: true}
			}
			wf = confirmed
		}

		reason := fmt.Sprintf("Cancelled for class %q", class.Name)
		for _, id := range wf.PendingCancellations() {
			if err := tx.CancelBooking(ctx, id, reason); err != nil {
				return &CancellationError{BookingID: id, Err: err}
			}
		}
		if err := tx.CreateClass(ctx, class); err != nil {
			return &CommitError{ClassName: class.Name, Sessions: len(class.Sessions), Err: err}
		}
		if wf, err = wf.Commit(); err != nil {
			return err
		}
		cancelled = wf.Confirmed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.committed(ctx, class, cancelled)
	if cancelled == nil {
		cancelled = []int64{}
	}
	return &CreateClassResponse{Class: class, CancelledBookingIDs: cancelled}, nil
}

// GetClass returns a class with its sessions to staff of the owning organization.
func (s *Service) GetClass(ctx context.Context, actor domain.Actor, id int64) (*domain.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.Manages(c.OrganizationID) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *Service) committed(ctx context.Context, c *domain.Class, cancelled []int64) {
	var facilityID int64
	if c.FacilityID != nil {
		facilityID = *c.FacilityID
	}
	s.log.Info("class created",
		"class_id", c.ID,
		"series_id", c.SeriesID,
		"facility_id", facilityID,
		"sessions", len(c.Sessions),
		"cancelled_bookings", len(cancelled),
	)
	for _, id := range cancelled {
		events.Emit(ctx, s.log, s.events, events.New(events.BookingCancelled, c.OrganizationID, facilityID, map[string]any{
			"id":       id,
			"class_id": c.ID,
		}))
	}
	events.Emit(ctx, s.log, s.events, events.New(events.ClassCommitted, c.OrganizationID, facilityID, c))
}

func (s *Service) facility(ctx context.Context, id int64) (*domain.Facility, error) {
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

// resolvePlace returns the facility (nil for classes held outside a facility) and the location.
func (s *Service) resolvePlace(ctx context.Context, req CreateClassRequest) (*domain.Facility, *domain.Location, error) {
	if req.FacilityID != nil {
		f, err := s.facility(ctx, *req.FacilityID)
		if err != nil {
			return nil, nil, err
		}
		if req.LocationID != 0 && req.LocationID != f.LocationID {
			return nil, nil, fmt.Errorf("%w: facility %d is not at location %d", ErrValidation, f.ID, req.LocationID)
		}
		if f.Location != nil {
			return f, f.Location, nil
		}
		req.LocationID = f.LocationID
		l, err := s.location(ctx, req.LocationID)
		return f, l, err
	}

	if req.LocationID == 0 {
		return nil, nil, fmt.Errorf("%w: location_id or facility_id is required", ErrValidation)
	}
	l, err := s.location(ctx, req.LocationID)
	return nil, l, err
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

func buildSpec(req CreateClassRequest, loc *time.Location) (scheduling.SessionSpec, error) {
	startDate, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.StartDate), loc)
	if err != nil {
		return scheduling.SessionSpec{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrValidation)
	}
	clock, err := scheduling.ParseClock(req.StartTime)
	if err != nil {
		return scheduling.SessionSpec{}, fmt.Errorf("%w: start_time must be HH:MM", ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		return scheduling.SessionSpec{}, fmt.Errorf("%w: duration_minutes must be positive", ErrValidation)
	}

	spec := scheduling.SessionSpec{
		StartDate:  startDate,
		StartTime:  clock,
		Duration:   time.Duration(req.DurationMinutes) * time.Minute,
		Recurrence: scheduling.Once{},
		Location:   loc,
	}

	switch req.Recurrence.Type {
	case "", RecurrenceOnce:
		return spec, nil
	case RecurrenceRepeating:
	default:
		return spec, fmt.Errorf("%w: recurrence type must be once or repeating", ErrValidation)
	}

	pattern, err := scheduling.ParsePattern(req.Recurrence.Pattern)
	if err != nil {
		return spec, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	endDate, err := time.ParseInLocation(dateLayout, strings.TrimSpace(req.Recurrence.EndDate), loc)
	if err != nil {
		return spec, fmt.Errorf("%w: recurrence end_date must be YYYY-MM-DD", ErrValidation)
	}
	skip, err := scheduling.ParseWeekdays(req.Recurrence.SkipDays)
	if err != nil {
		return spec, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	rep := scheduling.Repeating{Pattern: pattern, EndDate: endDate, SkipDays: skip}
	if err := rep.Validate(startDate, loc); err != nil {
		return spec, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	spec.Recurrence = rep
	return spec, nil
}

func newClass(req CreateClassRequest, spec scheduling.SessionSpec, l *domain.Location, f *domain.Facility, intervals []scheduling.Interval) *domain.Class {
	c := &domain.Class{
		SeriesID:        uuid.NewString(),
		OrganizationID:  l.OrganizationID,
		LocationID:      l.ID,
		Name:            strings.TrimSpace(req.Name),
		Instructor:      strings.TrimSpace(req.Instructor),
		StartDate:       spec.StartDate.UTC(),
		StartTime:       spec.StartTime.String(),
		DurationMinutes: req.DurationMinutes,
	}
	if f != nil {
		id := f.ID
		c.FacilityID = &id
		c.IsInFacility = true
	}
	if rep, ok := spec.Recurrence.(scheduling.Repeating); ok {
		end := rep.EndDate.UTC()
		c.RecurrencePattern = string(rep.Pattern)
		c.EndDate = &end
		for _, w := range rep.SkipDays {
			c.SkipDays = append(c.SkipDays, scheduling.WeekdayKey(w))
		}
	}

	c.Sessions = make([]domain.ClassSession, 0, len(intervals))
	for _, iv := range intervals {
		c.Sessions = append(c.Sessions, domain.ClassSession{
			FacilityID: c.FacilityID,
			LocationID: c.LocationID,
			ClassName:  c.Name,
			StartTime:  iv.Start.UTC(),
			EndTime:    iv.End.UTC(),
		})
	}
	return c
}
