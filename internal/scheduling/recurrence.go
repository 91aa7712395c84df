package scheduling

import (
	"fmt"
	"time"
)

// MaxSessionsPerClass bounds how many sessions one recurring class may expand to.
const MaxSessionsPerClass = 200

type Pattern string

const (
	PatternDaily      Pattern = "daily"
	PatternWeekly     Pattern = "weekly"
	PatternBiweekly   Pattern = "biweekly"
	PatternTriweekly  Pattern = "triweekly"
	PatternMonthly    Pattern = "monthly"
	PatternBimonthly  Pattern = "bimonthly"
	PatternTrimonthly Pattern = "trimonthly"
)

type stride struct {
	days   int
	months int
}

var strides = map[Pattern]stride{
	PatternDaily:      {days: 1},
	PatternWeekly:     {days: 7},
	PatternBiweekly:   {days: 14},
	PatternTriweekly:  {days: 21},
	PatternMonthly:    {months: 1},
	PatternBimonthly:  {months: 2},
	PatternTrimonthly: {months: 3},
}

func ParsePattern(s string) (Pattern, error) {
	p := Pattern(s)
	if _, ok := strides[p]; !ok {
		return "", &RecurrenceError{Reason: fmt.Sprintf("unknown pattern %q", s)}
	}
	return p, nil
}

func (p Pattern) Valid() bool {
	_, ok := strides[p]
	return ok
}

// occurrence returns the n-th step from anchor (a local midnight).
// Month strides are computed from the anchor and clamp to the last day of the target
// month, so Jan 31 monthly yields Feb 28/29, Mar 31, Apr 30.
func (p Pattern) occurrence(anchor time.Time, n int) time.Time {
	st := strides[p]
	if st.months == 0 {
		return anchor.AddDate(0, 0, n*st.days)
	}
	return addMonthsClamped(anchor, n*st.months)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// Recurrence is either Once or Repeating.
type Recurrence interface {
	isRecurrence()
}

type Once struct{}

type Repeating struct {
	Pattern  Pattern
	EndDate  time.Time
	SkipDays []time.Weekday
}

func (Once) isRecurrence()      {}
func (Repeating) isRecurrence() {}

// Validate applies the request-level rule: a repeating class must end strictly after it starts.
func (r Repeating) Validate(startDate time.Time, loc *time.Location) error {
	if !r.Pattern.Valid() {
		return &RecurrenceError{Reason: "pattern is required"}
	}
	if r.EndDate.IsZero() {
		return &RecurrenceError{Reason: "end date is required"}
	}
	if !CalendarDate(r.EndDate, loc).After(CalendarDate(startDate, loc)) {
		return &RecurrenceError{Reason: "end date must be after start date"}
	}
	return nil
}

func (r Repeating) skips(w time.Weekday) bool {
	for _, s := range r.SkipDays {
		if s == w {
			return true
		}
	}
	return false
}

// SessionSpec describes a class schedule before expansion.
type SessionSpec struct {
	StartDate  time.Time
	StartTime  Clock
	Duration   time.Duration
	Recurrence Recurrence
	Location   *time.Location
}

func (s SessionSpec) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// ExpandDates returns the ordered calendar days (local midnights) a SessionSpec produces.
// The cursor walks from the start date by the pattern stride up to and including the end date;
// a skipped weekday still consumes its step.
func ExpandDates(spec SessionSpec) ([]time.Time, error) {
	loc := spec.location()
	if spec.StartDate.IsZero() {
		return nil, &RecurrenceError{Reason: "start date is required"}
	}
	start := CalendarDate(spec.StartDate, loc)

	switch r := spec.Recurrence.(type) {
	case nil, Once:
		return []time.Time{start}, nil
	case Repeating:
		if !r.Pattern.Valid() {
			return nil, &RecurrenceError{Reason: "pattern is required"}
		}
		if r.EndDate.IsZero() {
			return nil, &RecurrenceError{Reason: "end date is required"}
		}
		end := CalendarDate(r.EndDate, loc)
		if end.Before(start) {
			return nil, &RecurrenceError{Reason: "end date is before start date"}
		}

		out := make([]time.Time, 0, 16)
		for n := 0; ; n++ {
			day := r.Pattern.occurrence(start, n)
			if day.After(end) {
				break
			}
			if r.skips(day.Weekday()) {
				continue
			}
			out = append(out, day)
			if len(out) > MaxSessionsPerClass {
				return nil, &SessionLimitError{Limit: MaxSessionsPerClass, Count: len(out)}
			}
		}
		return out, nil
	default:
		return nil, &RecurrenceError{Reason: fmt.Sprintf("unsupported recurrence %T", r)}
	}
}

// Expand turns a SessionSpec into session intervals, one per expanded day.
func Expand(spec SessionSpec) ([]Interval, error) {
	if spec.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	days, err := ExpandDates(spec)
	if err != nil {
		return nil, err
	}

	loc := spec.location()
	out := make([]Interval, 0, len(days))
	for _, d := range days {
		start := spec.StartTime.On(d, loc)
		out = append(out, Interval{Start: start, End: start.Add(spec.Duration)})
	}
	return out, nil
}

// CheckSessionLimit rejects batches above MaxSessionsPerClass.
func CheckSessionLimit(n int) error {
	if n > MaxSessionsPerClass {
		return &SessionLimitError{Limit: MaxSessionsPerClass, Count: n}
	}
	return nil
}
