package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"slotwise/internal/domain"
)

type RecordKind string

const (
	RecordBooking      RecordKind = "booking"
	RecordClassSession RecordKind = "class_session"
)

// ConflictRecord is a read-only view of an existing booking or class session that
// overlaps a proposed interval.
type ConflictRecord struct {
	Kind       RecordKind `json:"kind"`
	ID         int64      `json:"id"`
	ClassID    int64      `json:"class_id,omitempty"`
	FacilityID int64      `json:"facility_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	Status     string     `json:"status,omitempty"`
	Label      string     `json:"label,omitempty"`
}

func (r ConflictRecord) interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

func BookingRecord(b domain.Booking) ConflictRecord {
	return ConflictRecord{
		Kind:       RecordBooking,
		ID:         b.ID,
		FacilityID: b.FacilityID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     string(b.Status),
		Label:      b.CustomerName,
	}
}

func SessionRecord(s domain.ClassSession) ConflictRecord {
	var facilityID int64
	if s.FacilityID != nil {
		facilityID = *s.FacilityID
	}
	return ConflictRecord{
		Kind:       RecordClassSession,
		ID:         s.ID,
		ClassID:    s.ClassID,
		FacilityID: facilityID,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Label:      s.ClassName,
	}
}

// SessionCheck holds the conflicts found for one proposed interval.
type SessionCheck struct {
	Index    int              `json:"index"`
	Session  Interval         `json:"session"`
	Bookings []ConflictRecord `json:"bookings"`
	Classes  []ConflictRecord `json:"classes"`
}

func (c SessionCheck) Clean() bool {
	return len(c.Bookings) == 0 && len(c.Classes) == 0
}

// Report is the detector output. Bookings and Classes are the de-duplicated unions over all sessions,
// ordered by start time.
type Report struct {
	Sessions []SessionCheck   `json:"sessions"`
	Bookings []ConflictRecord `json:"bookings"`
	Classes  []ConflictRecord `json:"classes"`
}

func (r Report) HasBookingConflicts() bool { return len(r.Bookings) > 0 }

func (r Report) HasClassConflicts() bool { return len(r.Classes) > 0 }

func (r Report) Clean() bool { return !r.HasBookingConflicts() && !r.HasClassConflicts() }

// BookingIDs lists the ids of all conflicting customer bookings.
func (r Report) BookingIDs() []int64 {
	out := make([]int64, 0, len(r.Bookings))
	for _, b := range r.Bookings {
		out = append(out, b.ID)
	}
	return out
}

// Detect checks each proposed interval against the existing bookings and class sessions of
// facilityID. Inactive bookings, other facilities and sessions not bound to a facility are ignored.
func Detect(facilityID int64, proposed []Interval, bookings []domain.Booking, sessions []domain.ClassSession) Report {
	existingBookings := make([]ConflictRecord, 0, len(bookings))
	for _, b := range bookings {
		if b.FacilityID != facilityID || !b.Status.Occupies() {
			continue
		}
		existingBookings = append(existingBookings, BookingRecord(b))
	}
	existingSessions := make([]ConflictRecord, 0, len(sessions))
	for _, s := range sessions {
		if s.FacilityID == nil || *s.FacilityID != facilityID {
			continue
		}
		existingSessions = append(existingSessions, SessionRecord(s))
	}
	sortRecords(existingBookings)
	sortRecords(existingSessions)

	report := Report{
		Sessions: make([]SessionCheck, 0, len(proposed)),
		Bookings: []ConflictRecord{},
		Classes:  []ConflictRecord{},
	}
	seenBookings := map[int64]bool{}
	seenSessions := map[int64]bool{}

	for i, p := range proposed {
		check := SessionCheck{
			Index:    i,
			Session:  p,
			Bookings: overlapping(p, existingBookings),
			Classes:  overlapping(p, existingSessions),
		}
		for _, b := range check.Bookings {
			if !seenBookings[b.ID] {
				seenBookings[b.ID] = true
				report.Bookings = append(report.Bookings, b)
			}
		}
		for _, s := range check.Classes {
			if !seenSessions[s.ID] {
				seenSessions[s.ID] = true
				report.Classes = append(report.Classes, s)
			}
		}
		report.Sessions = append(report.Sessions, check)
	}

	sortRecords(report.Bookings)
	sortRecords(report.Classes)
	return report
}

// Redacted returns a copy without booking labels, which hold customer names.
// Use it for callers outside the facility's organization.
func (r Report) Redacted() Report {
	out := Report{
		Sessions: make([]SessionCheck, len(r.Sessions)),
		Bookings: redactBookings(r.Bookings),
		Classes:  append([]ConflictRecord{}, r.Classes...),
	}
	for i, c := range r.Sessions {
		c.Bookings = redactBookings(c.Bookings)
		c.Classes = append([]ConflictRecord{}, c.Classes...)
		out.Sessions[i] = c
	}
	return out
}

func redactBookings(in []ConflictRecord) []ConflictRecord {
	out := make([]ConflictRecord, len(in))
	for i, b := range in {
		b.Label = ""
		out[i] = b
	}
	return out
}

func sortRecords(items []ConflictRecord) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].StartTime.Before(items[j].StartTime) })
}

// overlapping expects existing sorted by start time.
func overlapping(p Interval, existing []ConflictRecord) []ConflictRecord {
	out := []ConflictRecord{}
	for _, e := range existing {
		if !e.StartTime.Before(p.End) {
			break
		}
		if p.Overlaps(e.interval()) {
			out = append(out, e)
		}
	}
	return out
}

// ConflictSource is the read side of the persistence layer the detector needs.
type ConflictSource interface {
	ActiveBookingsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.Booking, error)
	SessionsInRange(ctx context.Context, facilityID int64, from, to time.Time) ([]domain.ClassSession, error)
}

// Check loads everything overlapping the batch envelope with one read per category and runs Detect.
// Batches above MaxSessionsPerClass are rejected before any read.
func Check(ctx context.Context, src ConflictSource, facilityID int64, proposed []Interval) (Report, error) {
	if err := CheckSessionLimit(len(proposed)); err != nil {
		return Report{}, err
	}
	for _, p := range proposed {
		if !p.Start.Before(p.End) {
			return Report{}, ErrInvalidInterval
		}
	}

	env, ok := Envelope(proposed)
	if !ok {
		return Detect(facilityID, nil, nil, nil), nil
	}

	bookings, err := src.ActiveBookingsInRange(ctx, facilityID, env.Start, env.End)
	if err != nil {
		return Report{}, fmt.Errorf("load bookings for facility %d: %w", facilityID, err)
	}
	sessions, err := src.SessionsInRange(ctx, facilityID, env.Start, env.End)
	if err != nil {
		return Report{}, fmt.Errorf("load class sessions for facility %d: %w", facilityID, err)
	}
	return Detect(facilityID, proposed, bookings, sessions), nil
}
