package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	BookingCreated   Type = "booking.created"
	BookingConfirmed Type = "booking.confirmed"
	BookingCancelled Type = "booking.cancelled"
	BookingCompleted Type = "booking.completed"
	ClassCommitted   Type = "class.committed"
)

// Event is a schedule change fanned out to subscribers after the write committed.
type Event struct {
	ID             string    `json:"id"`
	Type           Type      `json:"type"`
	OrganizationID int64     `json:"organization_id"`
	FacilityID     int64     `json:"facility_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
	Payload        any       `json:"payload"`
}

func New(t Type, organizationID, facilityID int64, payload any) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           t,
		OrganizationID: organizationID,
		FacilityID:     facilityID,
		OccurredAt:     time.Now().UTC(),
		Payload:        payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Emit publishes ev and only logs a failure; the schedule write already succeeded.
func Emit(ctx context.Context, log *slog.Logger, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("event publish failed", "event_id", ev.ID, "type", ev.Type, "facility_id", ev.FacilityID, "error", err)
	}
}
