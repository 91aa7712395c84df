package scheduling

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two ranges share any instant.
// Touching ranges (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Contains(inner Interval) bool {
	return !inner.Start.Before(i.Start) && !i.End.Before(inner.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func Overlaps(a, b Interval) bool { return a.Overlaps(b) }

func Contains(outer, inner Interval) bool { return outer.Contains(inner) }

// Envelope returns the smallest interval covering all of the given ones.
func Envelope(items []Interval) (Interval, bool) {
	if len(items) == 0 {
		return Interval{}, false
	}
	out := items[0]
	for _, it := range items[1:] {
		if it.Start.Before(out.Start) {
			out.Start = it.Start
		}
		if it.End.After(out.End) {
			out.End = it.End
		}
	}
	return out, true
}
