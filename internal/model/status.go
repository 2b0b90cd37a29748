package model

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusDeclined  AppointmentStatus = "DECLINED"
)

// transitions is the full set of legal status changes. Anything not listed
// here, including same-state no-ops, is rejected.
var transitions = map[AppointmentStatus]map[AppointmentStatus]bool{
	StatusScheduled: {
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusDeclined:  true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusDeclined:
		return true
	}
	return false
}

// Terminal reports whether no further transition is legal from s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusDeclined:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal lifecycle change.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return transitions[s][next]
}

// Blocking reports whether an appointment in this status still occupies its
// time window for overlap purposes. Cancelled and declined bookings free
// their slot.
func (s AppointmentStatus) Blocking() bool {
	return s != StatusCancelled && s != StatusDeclined
}
