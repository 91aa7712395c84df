package scheduling

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterval   = errors.New("scheduling: interval start must be before end")
	ErrInvalidRecurrence = errors.New("scheduling: invalid recurrence")
	ErrTooManySessions   = errors.New("scheduling: too many sessions")
	ErrInvalidDuration   = errors.New("scheduling: duration must be positive")
	ErrInvalidClock      = errors.New("scheduling: invalid time of day")
	ErrInvalidTransition = errors.New("scheduling: invalid workflow transition")
)

// RecurrenceError explains which part of a recurrence request is wrong.
// It matches ErrInvalidRecurrence with errors.Is.
type RecurrenceError struct {
	Reason string
}

func (e *RecurrenceError) Error() string {
	return fmt.Sprintf("scheduling: invalid recurrence: %s", e.Reason)
}

func (e *RecurrenceError) Is(target error) bool {
	return target == ErrInvalidRecurrence
}

// SessionLimitError reports how many sessions a request expanded to before it was rejected.
type SessionLimitError struct {
	Limit int
	Count int
}

func (e *SessionLimitError) Error() string {
	return fmt.Sprintf("scheduling: recurrence produces more than %d sessions; reduce the date range or pick a less frequent pattern", e.Limit)
}

func (e *SessionLimitError) Is(target error) bool {
	return target == ErrTooManySessions
}
