package scheduling

import (
	"errors"
	"fmt"

	"salon-booking-api/internal/model"
)

// Code is the machine-readable reason a mutation was rejected. Codes are
// part of the API contract consumed by the dashboard.
type Code string

const (
	CodePastStartTime      Code = "PAST_START_TIME"
	CodeDurationOutOfRange Code = "DURATION_OUT_OF_RANGE"
	CodeNoAttendees        Code = "NO_ATTENDEES"
	CodeTimeConflict       Code = "TIME_CONFLICT"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeNotAuthorized      Code = "NOT_AUTHORIZED"
	CodeConflict           Code = "CONFLICT"
	CodeNotFound           Code = "NOT_FOUND"
)

// Error is a typed rejection. Validators return these instead of raising;
// only infrastructure failures travel as plain errors.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError unwraps err into a typed *Error if it carries one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Deterministic reports whether err is a validation outcome that would
// repeat identically on retry. Deterministic rejections are never retried.
func Deterministic(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	return e.Code != CodeConflict
}

func errPastStart() *Error {
	return newError(CodePastStartTime, "start time must be in the future")
}

func errDuration(minutes int) *Error {
	return newError(CodeDurationOutOfRange,
		"duration must be between %d and %d minutes, got %d",
		MinDurationMinutes, MaxDurationMinutes, minutes)
}

func errNoAttendees() *Error {
	return newError(CodeNoAttendees, "at least one attendee is required")
}

func errTimeConflict(b *Booking) *Error {
	return newError(CodeTimeConflict,
		"time conflicts with appointment %s (%s - %s)",
		b.ID, b.StartTime.Format("15:04"), b.EndTime.Format("15:04"))
}

func errInvalidTransition(from, to model.AppointmentStatus) *Error {
	return newError(CodeInvalidTransition, "cannot change status from %s to %s", from, to)
}

func errNotAuthorized() *Error {
	return newError(CodeNotAuthorized, "actor is not allowed to perform this change")
}

func errConflict() *Error {
	return newError(CodeConflict, "concurrent modification, please retry")
}

func errNotFound(id string) *Error {
	return newError(CodeNotFound, "appointment %s not found", id)
}

// ErrTxSerialization marks a transient transaction abort (serialization
// failure or deadlock). The store wraps the driver error with it so the
// service can retry without knowing SQLSTATEs.
var ErrTxSerialization = errors.New("transaction serialization failure")
