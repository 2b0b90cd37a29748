package scheduling

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"salon-booking-api/internal/model"
)

// memStore serializes transactions with a mutex, which models the
// per-attendee advisory locking of the real store: no two critical
// sections interleave.
type memStore struct {
	mu           sync.Mutex
	appointments map[string]*model.Appointment

	// injectAborts makes the next n transactions fail transiently.
	injectAborts int
}

func newMemStore() *memStore {
	return &memStore{appointments: make(map[string]*model.Appointment)}
}

func (m *memStore) RunInTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.injectAborts > 0 {
		m.injectAborts--
		return fmt.Errorf("%w: injected abort", ErrTxSerialization)
	}

	tx := &memTx{store: m, staged: make(map[string]*model.Appointment)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, a := range tx.staged {
		m.appointments[id] = a
	}
	return nil
}

type memTx struct {
	store  *memStore
	staged map[string]*model.Appointment
}

func (t *memTx) LockAttendees(context.Context, []string) error { return nil }

func (t *memTx) AppointmentsForAttendee(_ context.Context, attendeeID string) ([]Booking, error) {
	var out []Booking
	for _, a := range t.store.appointments {
		if !a.HasAttendee(attendeeID) || !a.Status.Blocking() {
			continue
		}
		out = append(out, Booking{ID: a.ID, StartTime: a.StartTime, EndTime: a.EndTime, Status: a.Status})
	}
	return out, nil
}

func (t *memTx) InsertAppointment(_ context.Context, a *model.Appointment) error {
	cp := *a
	t.staged[a.ID] = &cp
	return nil
}

func (t *memTx) AppointmentForUpdate(_ context.Context, id string) (*model.Appointment, error) {
	a, ok := t.store.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (t *memTx) UpdateAppointmentStatus(_ context.Context, id string, status model.AppointmentStatus, updatedAt time.Time) error {
	a, ok := t.store.appointments[id]
	if !ok {
		return fmt.Errorf("appointment %s vanished", id)
	}
	cp := *a
	cp.Status = status
	cp.UpdatedAt = updatedAt
	t.staged[id] = &cp
	return nil
}

func newTestService(st *memStore, now time.Time) *Service {
	return NewService(st, zerolog.Nop(), WithClock(func() time.Time { return now }))
}

func TestCreateAppointment(t *testing.T) {
	now := base
	st := newMemStore()
	svc := newTestService(st, now)

	start := now.Add(time.Hour)
	appt, err := svc.CreateAppointment(context.Background(), "creator", CreateInput{
		Title:           "Haircut",
		StartTime:       start,
		DurationMinutes: 30,
		AttendeeIDs:     []string{"userA"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appt.Status != model.StatusScheduled {
		t.Errorf("status: got %s, want SCHEDULED", appt.Status)
	}
	if !appt.StartTime.Equal(start) {
		t.Errorf("start: got %v, want %v", appt.StartTime, start)
	}
	if !appt.EndTime.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("end: got %v, want start+30m", appt.EndTime)
	}
	if appt.CreatorID != "creator" {
		t.Errorf("creator: got %s", appt.CreatorID)
	}
	if len(st.appointments) != 1 {
		t.Fatalf("stored %d appointments, want 1", len(st.appointments))
	}
}

func TestCreateOverlapRejected(t *testing.T) {
	now := base
	st := newMemStore()
	svc := newTestService(st, now)
	ctx := context.Background()

	first := CreateInput{
		Title: "First", StartTime: now.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	}
	if _, err := svc.CreateAppointment(ctx, "creator", first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// overlaps the first by 20 minutes
	second := first
	second.Title = "Second"
	second.StartTime = now.Add(time.Hour + 10*time.Minute)
	_, err := svc.CreateAppointment(ctx, "creator", second)
	wantCode(t, err, CodeTimeConflict)

	if len(st.appointments) != 1 {
		t.Fatalf("conflicting appointment was persisted")
	}
}

func TestCreateBackToBackAllowed(t *testing.T) {
	now := base
	st := newMemStore()
	svc := newTestService(st, now)
	ctx := context.Background()

	in := CreateInput{
		Title: "First", StartTime: now.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	}
	if _, err := svc.CreateAppointment(ctx, "creator", in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	in.Title = "Second"
	in.StartTime = now.Add(time.Hour + 30*time.Minute)
	if _, err := svc.CreateAppointment(ctx, "creator", in); err != nil {
		t.Fatalf("back-to-back create should succeed: %v", err)
	}
}

func TestCreateDurationOutOfRange(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)

	_, err := svc.CreateAppointment(context.Background(), "creator", CreateInput{
		Title: "Marathon", StartTime: base.Add(time.Hour), DurationMinutes: 600,
		AttendeeIDs: []string{"userA"},
	})
	wantCode(t, err, CodeDurationOutOfRange)
}

func TestCreateDefaultsDurationFromService(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)

	appt, err := svc.CreateAppointment(context.Background(), "creator", CreateInput{
		Title: "Color", StartTime: base.Add(time.Hour),
		Service:     model.ServiceHairColor,
		AttendeeIDs: []string{"userA"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if appt.DurationMinutes != model.ServiceHairColor.DefaultDurationMinutes() {
		t.Errorf("duration: got %d, want service default", appt.DurationMinutes)
	}
}

func TestCreateRetriesTransientAbort(t *testing.T) {
	st := newMemStore()
	st.injectAborts = 1
	svc := newTestService(st, base)

	_, err := svc.CreateAppointment(context.Background(), "creator", CreateInput{
		Title: "Haircut", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	})
	if err != nil {
		t.Fatalf("single abort should be retried away: %v", err)
	}
	if len(st.appointments) != 1 {
		t.Fatalf("retry double-applied: %d appointments", len(st.appointments))
	}
}

func TestCreateSurfacesConflictAfterSecondAbort(t *testing.T) {
	st := newMemStore()
	st.injectAborts = 2
	svc := newTestService(st, base)

	_, err := svc.CreateAppointment(context.Background(), "creator", CreateInput{
		Title: "Haircut", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	})
	wantCode(t, err, CodeConflict)
}

func TestTransitionRetriesTransientAbort(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)
	ctx := context.Background()

	appt, err := svc.CreateAppointment(ctx, "creator", CreateInput{
		Title: "Haircut", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	st.injectAborts = 1
	got, err := svc.TransitionStatus(ctx, appt.ID, model.StatusConfirmed, "creator")
	if err != nil {
		t.Fatalf("single abort should be retried away: %v", err)
	}
	if got.Status != model.StatusConfirmed {
		t.Errorf("status: got %s", got.Status)
	}
	if st.appointments[appt.ID].Status != model.StatusConfirmed {
		t.Error("retry did not persist the transition")
	}
}

func TestTransitionSurfacesConflictAfterSecondAbort(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)
	ctx := context.Background()

	appt, err := svc.CreateAppointment(ctx, "creator", CreateInput{
		Title: "Haircut", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	st.injectAborts = 2
	_, err = svc.TransitionStatus(ctx, appt.ID, model.StatusConfirmed, "creator")
	wantCode(t, err, CodeConflict)
	if st.appointments[appt.ID].Status != model.StatusScheduled {
		t.Error("failed transition must not change status")
	}
}

func TestConcurrentCreatesOneWins(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)

	in := CreateInput{
		Title: "Race", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateAppointment(context.Background(), "creator", in)
		}(i)
	}
	wg.Wait()

	var oks, conflicts int
	for _, err := range errs {
		if err == nil {
			oks++
			continue
		}
		if e, ok := AsError(err); ok && (e.Code == CodeTimeConflict || e.Code == CodeConflict) {
			conflicts++
		}
	}
	if oks != 1 || conflicts != 1 {
		t.Fatalf("want exactly one success and one conflict, got %d ok / %d conflict (%v)", oks, conflicts, errs)
	}
	if len(st.appointments) != 1 {
		t.Fatalf("both concurrent creates persisted")
	}
}

func TestTransitionStatus(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)
	ctx := context.Background()

	appt, err := svc.CreateAppointment(ctx, "creator", CreateInput{
		Title: "Haircut", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"attendee"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	confirmed, err := svc.TransitionStatus(ctx, appt.ID, model.StatusConfirmed, "creator")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Errorf("status: got %s", confirmed.Status)
	}

	// lifecycle never runs backwards
	_, err = svc.TransitionStatus(ctx, appt.ID, model.StatusScheduled, "creator")
	wantCode(t, err, CodeInvalidTransition)

	// repeating an already-applied transition is a no-op attempt, rejected
	_, err = svc.TransitionStatus(ctx, appt.ID, model.StatusConfirmed, "creator")
	wantCode(t, err, CodeInvalidTransition)
}

func TestTransitionAuthorization(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)
	ctx := context.Background()

	appt, err := svc.CreateAppointment(ctx, "creator", CreateInput{
		Title: "Haircut", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"attendee"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// only an attendee may decline
	_, err = svc.TransitionStatus(ctx, appt.ID, model.StatusDeclined, "creator")
	wantCode(t, err, CodeNotAuthorized)

	// only the creator may cancel
	_, err = svc.TransitionStatus(ctx, appt.ID, model.StatusCancelled, "attendee")
	wantCode(t, err, CodeNotAuthorized)

	if _, err := svc.TransitionStatus(ctx, appt.ID, model.StatusDeclined, "attendee"); err != nil {
		t.Fatalf("attendee decline: %v", err)
	}
	if st.appointments[appt.ID].Status != model.StatusDeclined {
		t.Errorf("decline not persisted")
	}
}

func TestTransitionUnknownAppointment(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)

	_, err := svc.TransitionStatus(context.Background(), "nope", model.StatusConfirmed, "creator")
	wantCode(t, err, CodeNotFound)
}

func TestCancelledSlotReusable(t *testing.T) {
	st := newMemStore()
	svc := newTestService(st, base)
	ctx := context.Background()

	in := CreateInput{
		Title: "First", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	}
	appt, err := svc.CreateAppointment(ctx, "creator", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.TransitionStatus(ctx, appt.ID, model.StatusCancelled, "creator"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	in.Title = "Second"
	if _, err := svc.CreateAppointment(ctx, "creator", in); err != nil {
		t.Fatalf("slot freed by cancellation should be bookable: %v", err)
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	changed []string
}

func (n *recordingNotifier) AppointmentCreated(a *model.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, a.ID)
}

func (n *recordingNotifier) AppointmentStatusChanged(a *model.Appointment, _ model.AppointmentStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, a.ID)
}

func TestNotifierFiresOnSuccessOnly(t *testing.T) {
	st := newMemStore()
	n := &recordingNotifier{}
	svc := NewService(st, zerolog.Nop(),
		WithClock(func() time.Time { return base }),
		WithNotifier(n),
	)
	ctx := context.Background()

	appt, err := svc.CreateAppointment(ctx, "creator", CreateInput{
		Title: "Haircut", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// rejected mutation must not notify
	_, _ = svc.CreateAppointment(ctx, "creator", CreateInput{
		Title: "Clash", StartTime: base.Add(time.Hour), DurationMinutes: 30,
		AttendeeIDs: []string{"userA"},
	})

	if _, err := svc.TransitionStatus(ctx, appt.ID, model.StatusConfirmed, "creator"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if len(n.created) != 1 || len(n.changed) != 1 {
		t.Fatalf("notifier calls: created=%d changed=%d, want 1/1", len(n.created), len(n.changed))
	}
}
