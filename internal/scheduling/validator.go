package scheduling

import (
	"context"
	"time"

	"salon-booking-api/internal/model"
)

// Duration bounds for a single appointment, in minutes.
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480
)

// CreateInput is a proposed appointment before validation.
type CreateInput struct {
	Title           string
	Description     string
	StartTime       time.Time
	DurationMinutes int
	Service         model.ServiceType
	AttendeeIDs     []string
}

// End computes the exclusive end of the proposed window.
func (in CreateInput) End() time.Time {
	return in.StartTime.Add(time.Duration(in.DurationMinutes) * time.Minute)
}

// ValidateCreate is the single accept/reject decision for a create request.
// The reference time is injected so tests never race the wall clock. It
// fails fast with the first typed error; src provides the in-transaction
// view of existing bookings.
func ValidateCreate(ctx context.Context, src BookingSource, in CreateInput, now time.Time) error {
	if !in.StartTime.After(now) {
		return errPastStart()
	}
	if in.DurationMinutes < MinDurationMinutes || in.DurationMinutes > MaxDurationMinutes {
		return errDuration(in.DurationMinutes)
	}
	if len(in.AttendeeIDs) == 0 {
		return errNoAttendees()
	}
	conflict, err := FindConflict(ctx, src, in.StartTime, in.End(), in.AttendeeIDs, "")
	if err != nil {
		return err
	}
	if conflict != nil {
		return errTimeConflict(conflict)
	}
	return nil
}

// ValidateStatusChange enforces the lifecycle state machine plus an
// authorization precondition. The capability decision is evaluated by the
// caller; passing it in keeps this a pure function.
func ValidateStatusChange(a *model.Appointment, requested model.AppointmentStatus, allowed bool) error {
	if !allowed {
		return errNotAuthorized()
	}
	if !requested.Valid() {
		return errInvalidTransition(a.Status, requested)
	}
	if !a.Status.CanTransitionTo(requested) {
		return errInvalidTransition(a.Status, requested)
	}
	return nil
}
