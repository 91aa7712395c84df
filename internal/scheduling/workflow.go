package scheduling

import (
	"errors"
	"fmt"
	"sort"
)

type State string

const (
	StateDraft           State = "draft"
	StateChecking        State = "checking"
	StateClean           State = "clean"
	StateBookingConflict State = "booking_conflict"
	StateClassConflict   State = "class_conflict"
	StateCommitted       State = "committed"
	StateAborted         State = "aborted"
)

var ErrConfirmationMismatch = errors.New("scheduling: confirmed bookings do not match the conflicting bookings")

// Workflow tracks one "create class in a facility" attempt. Every transition returns a new value
// and leaves the receiver untouched.
type Workflow struct {
	State     State
	Sessions  []Interval
	Report    Report
	Confirmed []int64
}

func NewWorkflow(sessions []Interval) (Workflow, error) {
	if err := CheckSessionLimit(len(sessions)); err != nil {
		return Workflow{}, err
	}
	for _, s := range sessions {
		if !s.Start.Before(s.End) {
			return Workflow{}, ErrInvalidInterval
		}
	}
	return Workflow{State: StateDraft, Sessions: sessions}, nil
}

func (w Workflow) transition(from ...State) error {
	for _, s := range from {
		if w.State == s {
			return nil
		}
	}
	return fmt.Errorf("%w: from %s", ErrInvalidTransition, w.State)
}

// BeginCheck moves a draft into the checking state.
func (w Workflow) BeginCheck() (Workflow, error) {
	if err := w.transition(StateDraft); err != nil {
		return w, err
	}
	w.State = StateChecking
	return w, nil
}

// Evaluate applies the detector report. Class conflicts are blocking and win over booking
// conflicts; the report keeps both lists so callers can show them together.
func (w Workflow) Evaluate(r Report) (Workflow, error) {
	if err := w.transition(StateChecking); err != nil {
		return w, err
	}
	w.Report = r
	switch {
	case r.HasClassConflicts():
		w.State = StateClassConflict
	case r.HasBookingConflicts():
		w.State = StateBookingConflict
	default:
		w.State = StateClean
	}
	return w, nil
}

// ConfirmCancellation records the caller's consent to cancel exactly the conflicting bookings.
func (w Workflow) ConfirmCancellation(ids []int64) (Workflow, error) {
	if err := w.transition(StateBookingConflict); err != nil {
		return w, err
	}
	if !sameIDs(ids, w.Report.BookingIDs()) {
		return w, ErrConfirmationMismatch
	}
	w.Confirmed = append([]int64(nil), ids...)
	sort.Slice(w.Confirmed, func(i, j int) bool { return w.Confirmed[i] < w.Confirmed[j] })
	return w, nil
}

// PendingCancellations lists the bookings that must be cancelled before commit.
func (w Workflow) PendingCancellations() []int64 {
	if w.State != StateBookingConflict {
		return nil
	}
	return w.Confirmed
}

func (w Workflow) CanCommit() bool {
	switch w.State {
	case StateClean:
		return true
	case StateBookingConflict:
		return len(w.Confirmed) > 0
	default:
		return false
	}
}

func (w Workflow) Commit() (Workflow, error) {
	if !w.CanCommit() {
		return w, fmt.Errorf("%w: cannot commit from %s", ErrInvalidTransition, w.State)
	}
	w.State = StateCommitted
	return w, nil
}

// Abort ends the attempt without changes. Committed workflows cannot be aborted.
func (w Workflow) Abort() (Workflow, error) {
	if err := w.transition(StateDraft, StateChecking, StateClean, StateBookingConflict, StateClassConflict); err != nil {
		return w, err
	}
	w.State = StateAborted
	return w, nil
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]int, len(a))
	for _, id := range a {
		set[id]++
	}
	for _, id := range b {
		if set[id] == 0 {
			return false
		}
		set[id]--
	}
	return true
}
