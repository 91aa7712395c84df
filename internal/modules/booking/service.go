package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"slotwise/internal/domain"
	"slotwise/internal/events"
	"slotwise/internal/pkg/tracing"
	"slotwise/internal/repository"
	"slotwise/internal/scheduling"
)

const (
	dateLayout         = "2006-01-02"
	defaultDuration    = 60
	maxDurationMinutes = 24 * 60
)

type Service struct {
	bookings   BookingRepository
	sessions   SessionReader
	facilities FacilityRepository
	hours      WorkingHoursReader
	locker     ScheduleLocker
	events     events.Publisher
	log        *slog.Logger
	now        func() time.Time
}

func NewService(
	bookings BookingRepository,
	sessions SessionReader,
	facilities FacilityRepository,
	hours WorkingHoursReader,
	locker ScheduleLocker,
	publisher events.Publisher,
	log *slog.Logger,
) *Service {
	return &Service{
		bookings:   bookings,
		sessions:   sessions,
		facilities: facilities,
		hours:      hours,
		locker:     locker,
		events:     publisher,
		log:        log,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
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

func facilityLocation(f *domain.Facility) *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location.TimeLocation()
}

// GetAvailability lists the bookable slots of one facility on one local calendar day.
func (s *Service) GetAvailability(ctx context.Context, facilityID int64, dateStr string, durationMinutes int) (*AvailabilityResponse, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if durationMinutes == 0 {
		durationMinutes = defaultDuration
	}
	if durationMinutes < 0 || durationMinutes > maxDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrValidation, maxDurationMinutes)
	}

	f, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	loc := facilityLocation(f)
	day := scheduling.CalendarDate(date, loc)

	weekly, err := s.hours.HoursFor(ctx, f.OrganizationID)
	if err != nil {
		return nil, err
	}
	wh := domain.HoursFor(weekly, day.Weekday())

	dayEnd := day.AddDate(0, 0, 1)
	bookings, err := s.bookings.ActiveBookingsInRange(ctx, f.ID, day, dayEnd)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.SessionsInRange(ctx, f.ID, day, dayEnd)
	if err != nil {
		return nil, err
	}

	busy := make([]scheduling.Interval, 0, len(bookings)+len(sessions))
	for _, b := range bookings {
		busy = append(busy, scheduling.Interval{Start: b.StartTime, End: b.EndTime})
	}
	for _, cs := range sessions {
		busy = append(busy, scheduling.Interval{Start: cs.StartTime, End: cs.EndTime})
	}

	slots, err := scheduling.Availability(scheduling.DayQuery{
		Date:     day,
		Duration: time.Duration(durationMinutes) * time.Minute,
		Hours:    scheduling.OperatingHours{Open: wh.OpenTime, Close: wh.CloseTime, IsClosed: wh.IsClosed},
		Location: loc,
		Now:      s.now(),
		Busy:     busy,
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrInvalidClock) {
			s.log.Warn("stored working hours are malformed", "organization_id", f.OrganizationID, "error", err)
			return nil, fmt.Errorf("working hours for organization %d: %w", f.OrganizationID, err)
		}
		return nil, err
	}

	return &AvailabilityResponse{
		FacilityID: f.ID,
		Date:       day.Format(dateLayout),
		Timezone:   loc.String(),
		Duration:   durationMinutes,
		Slots:      slots,
	}, nil
}

// maxScheduleDays bounds one schedule read.
const maxScheduleDays = 31

// GetSchedule returns the bookings of a facility for staff of its organization. to defaults to from.
func (s *Service) GetSchedule(ctx context.Context, actor domain.Actor, facilityID int64, fromStr, toStr string) (*ScheduleResponse, error) {
	from, err := time.Parse(dateLayout, strings.TrimSpace(fromStr))
	if err != nil {
		return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrValidation)
	}
	to := from
	if strings.TrimSpace(toStr) != "" {
		if to, err = time.Parse(dateLayout, strings.TrimSpace(toStr)); err != nil {
			return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrValidation)
		}
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to must not be before from", ErrValidation)
	}
	if to.Sub(from) >= maxScheduleDays*24*time.Hour {
		return nil, fmt.Errorf("%w: at most %d days per request", ErrValidation, maxScheduleDays)
	}

	f, err := s.facility(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if !actor.Manages(f.OrganizationID) {
		return nil, ErrForbidden
	}

	loc := facilityLocation(f)
	start := scheduling.CalendarDate(from, loc)
	end := scheduling.CalendarDate(to, loc).AddDate(0, 0, 1)
	bookings, err := s.bookings.ListByFacility(ctx, f.ID, start, end)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return &ScheduleResponse{
		FacilityID: f.ID,
		From:       start.Format(dateLayout),
		To:         end.AddDate(0, 0, -1).Format(dateLayout),
		Timezone:   loc.String(),
		Bookings:   bookings,
	}, nil
}

var tracer = tracing.Tracer("booking")

// CreateBooking re-checks the interval against bookings and class sessions while the facility is locked
// and inserts it in the same transaction.
func (s *Service) CreateBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.CreateBooking", trace.WithAttributes(
		attribute.Int64("facility_id", req.FacilityID),
	))
	b, err := s.createBooking(ctx, actor, req)
	tracing.End(span, err)
	return b, err
}

func (s *Service) createBooking(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.Booking, error) {
	interval, err := scheduling.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	if interval.Start.Before(s.now()) {
		return nil, fmt.Errorf("%w: start_time is in the past", ErrValidation)
	}

	f, err := s.facility(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	if req.LocationID != 0 && req.LocationID != f.LocationID {
		return nil, fmt.Errorf("%w: facility %d is not at location %d", ErrValidation, f.ID, req.LocationID)
	}
	if actor.Role.IsStaff() && !actor.Manages(f.OrganizationID) {
		return nil, ErrForbidden
	}

	b := &domain.Booking{
		OrganizationID: f.OrganizationID,
		FacilityID:     f.ID,
		LocationID:     f.LocationID,
		UserID:         actor.UserID,
		StartTime:      interval.Start.UTC(),
		EndTime:        interval.End.UTC(),
		Status:         domain.BookingPending,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		Notes:          req.Notes,
	}

	err = s.locker.WithFacilityLock(ctx, f.ID, func(tx repository.FacilityTx) error {
		report, err := scheduling.Check(ctx, tx, f.ID, []scheduling.Interval{interval})
		if err != nil {
			return err
		}
		if !report.Clean() {
			if !actor.Manages(f.OrganizationID) {
				report = report.Redacted()
			}
			return &ConflictError{Report: report}
		}
		return tx.CreateBooking(ctx, b)
	})
	if err != nil {
		if errors.Is(err, repository.ErrOverbooking) {
			return nil, ErrOverbooking
		}
		return nil, err
	}

	s.log.Info("booking created", "booking_id", b.ID, "facility_id", b.FacilityID, "user_id", b.UserID)
	events.Emit(ctx, s.log, s.events, events.New(events.BookingCreated, b.OrganizationID, b.FacilityID, b))
	return b, nil
}

// GetBooking returns a booking to its customer or to staff of its organization.
func (s *Service) GetBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, b) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ConfirmBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, domain.BookingPending, domain.BookingConfirmed, events.BookingConfirmed)
}

func (s *Service) CompleteBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, domain.BookingConfirmed, domain.BookingCompleted, events.BookingCompleted)
}

func (s *Service) transition(ctx context.Context, actor domain.Actor, id int64, from, to domain.BookingStatus, evType events.Type) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Manages(b.OrganizationID) {
		return nil, ErrForbidden
	}
	if b.Status != from {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, to)
	}

	if err := s.bookings.UpdateStatus(ctx, id, from, to); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: booking is no longer %s", ErrInvalidStatusTransition, from)
		}
		return nil, err
	}
	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking status changed", "booking_id", id, "from", from, "to", to)
	events.Emit(ctx, s.log, s.events, events.New(evType, updated.OrganizationID, updated.FacilityID, updated))
	return updated, nil
}

// CancelBooking frees the slot. Cancelled and completed bookings cannot be cancelled.
func (s *Service) CancelBooking(ctx context.Context, actor domain.Actor, id int64, reason string) (*domain.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, b) {
		return nil, ErrForbidden
	}
	if !b.Status.Occupies() {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidStatusTransition, b.Status)
	}

	if err := s.bookings.Cancel(ctx, id, strings.TrimSpace(reason)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}
	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking cancelled", "booking_id", id, "facility_id", updated.FacilityID)
	events.Emit(ctx, s.log, s.events, events.New(events.BookingCancelled, updated.OrganizationID, updated.FacilityID, updated))
	return updated, nil
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func canView(actor domain.Actor, b *domain.Booking) bool {
	if actor.Manages(b.OrganizationID) {
		return true
	}
	return actor.UserID != 0 && actor.UserID == b.UserID
}
