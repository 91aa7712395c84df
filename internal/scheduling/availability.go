package scheduling

import (
	"sort"
	"strings"
	"time"
)

// SlotGranularity is the distance between candidate slot starts.
const SlotGranularity = 30 * time.Minute

// OperatingHours is one weekday of a location's opening schedule, "HH:mm" wall clock.
type OperatingHours struct {
	Open     string
	Close    string
	IsClosed bool
}

type Slot struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

// ResolveWindow places the hours on the calendar day in loc.
// ok is false when the day is closed, the hours are incomplete, or close is not after open.
func ResolveWindow(day time.Time, hours OperatingHours, loc *time.Location) (Interval, bool, error) {
	if hours.IsClosed || strings.TrimSpace(hours.Open) == "" || strings.TrimSpace(hours.Close) == "" {
		return Interval{}, false, nil
	}
	open, err := ParseClock(hours.Open)
	if err != nil {
		return Interval{}, false, err
	}
	closing, err := ParseClock(hours.Close)
	if err != nil {
		return Interval{}, false, err
	}

	date := CalendarDate(day, loc)
	window := Interval{Start: open.On(date, loc), End: closing.On(date, loc)}
	if !window.End.After(window.Start) {
		return Interval{}, false, nil
	}
	return window, true, nil
}

// Slots lists every candidate start inside window, stepped by SlotGranularity, whose
// [start, start+duration) fits before the window closes. Starts before now are omitted and the
// first start after now is rounded up to the next half-hour boundary. A slot is unavailable when it
// overlaps any busy interval.
func Slots(window Interval, duration time.Duration, now time.Time, busy []Interval) []Slot {
	if duration <= 0 || !window.End.After(window.Start) {
		return []Slot{}
	}

	first := window.Start
	if now.After(first) {
		first = ceilToGranularity(now, window.Start.Location())
	}

	sorted := make([]Interval, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	out := make([]Slot, 0)
	for t := first; !t.Add(duration).After(window.End); t = t.Add(SlotGranularity) {
		candidate := Interval{Start: t, End: t.Add(duration)}
		out = append(out, Slot{
			StartTime:   candidate.Start,
			EndTime:     candidate.End,
			IsAvailable: !overlapsAny(candidate, sorted),
		})
	}
	return out
}

// DayQuery collects everything needed to compute one day of slots.
type DayQuery struct {
	Date     time.Time
	Duration time.Duration
	Hours    OperatingHours
	Location *time.Location
	Now      time.Time
	Busy     []Interval
}

// Availability resolves the operating window for the query date and lists its slots.
// A closed day yields an empty sequence.
func Availability(q DayQuery) ([]Slot, error) {
	if q.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}
	window, ok, err := ResolveWindow(q.Date, q.Hours, loc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Slot{}, nil
	}
	return Slots(window, q.Duration, q.Now, q.Busy), nil
}

func ceilToGranularity(t time.Time, loc *time.Location) time.Time {
	midnight := DateOf(t, loc)
	elapsed := t.Sub(midnight)
	steps := (elapsed + SlotGranularity - 1) / SlotGranularity
	return midnight.Add(steps * SlotGranularity)
}

// overlapsAny expects busy sorted by start.
func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if !b.Start.Before(candidate.End) {
			return false
		}
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
