package classes

import (
	"errors"
	"fmt"

	"slotwise/internal/scheduling"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrForbidden         = errors.New("forbidden")
	ErrFacilityNotFound  = errors.New("facility not found")
	ErrLocationNotFound  = errors.New("location not found")
	ErrNotFound          = errors.New("class not found")
	ErrNoSessions        = errors.New("recurrence produces no sessions")
	ErrBookingConflict   = errors.New("class sessions overlap customer bookings")
	ErrClassConflict     = errors.New("class sessions overlap other classes")
	ErrPersistence       = errors.New("class could not be saved")
	ErrTooManySessions   = scheduling.ErrTooManySessions
	ErrInvalidRecurrence = scheduling.ErrInvalidRecurrence
)

// ConflictError reports what blocks the class. Kind is ErrBookingConflict or ErrClassConflict.
// Mismatch is set when the caller confirmed a different set of bookings than the ones in conflict.
type ConflictError struct {
	Kind     error
	Report   scheduling.Report
	Mismatch bool
}

func (e *ConflictError) Error() string {
	if e.Mismatch {
		return fmt.Sprintf("%v: cancel_booking_ids must list exactly the conflicting bookings", e.Kind)
	}
	return e.Kind.Error()
}

func (e *ConflictError) Is(target error) bool {
	return target == e.Kind
}

// CancellationError names the booking whose cancellation failed; nothing was committed.
type CancellationError struct {
	BookingID int64
	Err       error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancel booking %d: %v", e.BookingID, e.Err)
}

func (e *CancellationError) Is(target error) bool { return target == ErrPersistence }

func (e *CancellationError) Unwrap() error { return e.Err }

// CommitError reports a failed class or session insert; nothing was committed.
type CommitError struct {
	ClassName string
	Sessions  int
	Err       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("save class %q with %d sessions: %v", e.ClassName, e.Sessions, e.Err)
}

func (e *CommitError) Is(target error) bool { return target == ErrPersistence }

func (e *CommitError) Unwrap() error { return e.Err }
