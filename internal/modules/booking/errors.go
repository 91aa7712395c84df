package booking

import (
	"errors"

	"slotwise/internal/scheduling"
)

var (
	ErrValidation              = errors.New("validation error")
	ErrNotAvailable            = errors.New("booking not available")
	ErrOverbooking             = errors.New("overbooking constraint violation")
	ErrNotFound                = errors.New("booking not found")
	ErrFacilityNotFound        = errors.New("facility not found")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// ConflictError carries the existing records that block a booking.
type ConflictError struct {
	Report scheduling.Report
}

func (e *ConflictError) Error() string {
	return "booking not available: the facility is taken during the requested time"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrNotAvailable
}
