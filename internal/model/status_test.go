package model

import "testing"

func TestStatusTransitions(t *testing.T) {
	all := []AppointmentStatus{
		StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusDeclined,
	}
	legal := map[AppointmentStatus][]AppointmentStatus{
		StatusScheduled: {StatusConfirmed, StatusCancelled, StatusDeclined},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, next := range legal[from] {
				if next == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusSelfLoopIllegal(t *testing.T) {
	for _, s := range []AppointmentStatus{
		StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted, StatusDeclined,
	} {
		if s.CanTransitionTo(s) {
			t.Errorf("%s -> %s should be illegal", s, s)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	tests := []struct {
		status   AppointmentStatus
		terminal bool
	}{
		{StatusScheduled, false},
		{StatusConfirmed, false},
		{StatusCancelled, true},
		{StatusCompleted, true},
		{StatusDeclined, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestBlocking(t *testing.T) {
	// cancelled and declined bookings free their time slot; completed ones
	// keep it (the work happened)
	if StatusCancelled.Blocking() || StatusDeclined.Blocking() {
		t.Error("cancelled/declined should not block")
	}
	if !StatusScheduled.Blocking() || !StatusConfirmed.Blocking() || !StatusCompleted.Blocking() {
		t.Error("scheduled/confirmed/completed should block")
	}
}

func TestStatusValid(t *testing.T) {
	if AppointmentStatus("BOOKED").Valid() {
		t.Error("unknown status should be invalid")
	}
	if !StatusScheduled.Valid() {
		t.Error("SCHEDULED should be valid")
	}
}
