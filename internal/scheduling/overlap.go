package scheduling

import (
	"context"
	"fmt"
	"time"

	"salon-booking-api/internal/model"
)

// Booking is the slice of an appointment the overlap check needs.
type Booking struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Status    model.AppointmentStatus
}

// BookingSource yields the existing appointments of one attendee. The store
// transaction implements it so the check runs on the same snapshot as the
// subsequent insert.
type BookingSource interface {
	AppointmentsForAttendee(ctx context.Context, attendeeID string) ([]Booking, error)
}

// overlaps applies the half-open interval test: [s1,e1) and [s2,e2) share an
// instant iff s1 < e2 && s2 < e1. Zero-gap back-to-back windows do not overlap.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// FindConflict returns the earliest-starting non-cancelled booking of any
// attendee that intersects [start, end), or nil when the window is free.
// excludeID skips the appointment being updated in place.
func FindConflict(ctx context.Context, src BookingSource, start, end time.Time, attendeeIDs []string, excludeID string) (*Booking, error) {
	var conflict *Booking
	for _, attendee := range attendeeIDs {
		existing, err := src.AppointmentsForAttendee(ctx, attendee)
		if err != nil {
			return nil, fmt.Errorf("fetching bookings for %s: %w", attendee, err)
		}
		for i := range existing {
			b := existing[i]
			if b.ID == excludeID || !b.Status.Blocking() {
				continue
			}
			if !overlaps(start, end, b.StartTime, b.EndTime) {
				continue
			}
			if conflict == nil || b.StartTime.Before(conflict.StartTime) {
				conflict = &b
			}
		}
	}
	return conflict, nil
}
