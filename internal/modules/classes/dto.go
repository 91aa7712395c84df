package classes

import (
	"time"

	"slotwise/internal/domain"
	"slotwise/internal/scheduling"
)

type SessionInput struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type CheckConflictsRequest struct {
	FacilityID int64          `json:"facility_id" binding:"required"`
	Sessions   []SessionInput `json:"sessions"`
}

type CheckConflictsResponse struct {
	ConflictStatus       bool                        `json:"conflict_status"`
	Conflicts            []scheduling.ConflictRecord `json:"conflicts"`
	ClassConflictsStatus bool                        `json:"class_conflicts_status"`
	ClassConflicts       []scheduling.ConflictRecord `json:"class_conflicts"`
	Sessions             []scheduling.SessionCheck   `json:"sessions"`
}

func newCheckConflictsResponse(r scheduling.Report) *CheckConflictsResponse {
	return &CheckConflictsResponse{
		ConflictStatus:       r.HasBookingConflicts(),
		Conflicts:            r.Bookings,
		ClassConflictsStatus: r.HasClassConflicts(),
		ClassConflicts:       r.Classes,
		Sessions:             r.Sessions,
	}
}

const (
	RecurrenceOnce      = "once"
	RecurrenceRepeating = "repeating"
)

// RecurrenceInput is {"type":"once"} or {"type":"repeating","pattern":...,"end_date":...,"skip_days":[...]}.
type RecurrenceInput struct {
	Type     string   `json:"type" validate:"omitempty,oneof=once repeating"`
	Pattern  string   `json:"pattern" validate:"omitempty,oneof=daily weekly biweekly triweekly monthly bimonthly trimonthly"`
	EndDate  string   `json:"end_date"`
	SkipDays []string `json:"skip_days" validate:"omitempty,dive,weekday"`
}

type CreateClassRequest struct {
	Name             string          `json:"name" validate:"required,max=200"`
	Instructor       string          `json:"instructor" validate:"max=200"`
	LocationID       int64           `json:"location_id"`
	FacilityID       *int64          `json:"facility_id"`
	StartDate        string          `json:"start_date" validate:"required"`
	StartTime        string          `json:"start_time" validate:"required,clock"`
	DurationMinutes  int             `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
	Recurrence       RecurrenceInput `json:"recurrence"`
	CancelBookingIDs []int64         `json:"cancel_booking_ids"`
}

type CreateClassResponse struct {
	Class               *domain.Class `json:"class"`
	CancelledBookingIDs []int64       `json:"cancelled_booking_ids"`
}
