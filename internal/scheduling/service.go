package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salon-booking-api/internal/model"
)

// Tx is the transactional view the service drives. The overlap read, the
// attendee locks and the write all happen on the same transaction so two
// concurrent creates for the same attendee cannot both observe a free slot.
type Tx interface {
	BookingSource
	// LockAttendees serializes concurrent bookings that share an attendee.
	// Callers pass the ids sorted; the locks are released on commit/rollback.
	LockAttendees(ctx context.Context, attendeeIDs []string) error
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	// AppointmentForUpdate loads and row-locks an appointment, or returns
	// (nil, nil) when it does not exist.
	AppointmentForUpdate(ctx context.Context, id string) (*model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, updatedAt time.Time) error
}

// Store opens transactions for the service. Implemented by the pgx store;
// tests supply an in-memory fake.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

// Authorizer decides whether an actor may move an appointment to the
// requested status. Policy lives with the caller, not the validator.
type Authorizer func(actorID string, a *model.Appointment, requested model.AppointmentStatus) bool

// DefaultAuthorizer: the creator manages the booking lifecycle
// (confirm/cancel/complete); an attendee may confirm or decline their own
// participation.
func DefaultAuthorizer(actorID string, a *model.Appointment, requested model.AppointmentStatus) bool {
	creator := actorID == a.CreatorID
	attendee := a.HasAttendee(actorID)
	switch requested {
	case model.StatusConfirmed:
		return creator || attendee
	case model.StatusCancelled, model.StatusCompleted:
		return creator
	case model.StatusDeclined:
		return attendee
	}
	return false
}

// Notifier receives post-commit lifecycle events. May be nil.
type Notifier interface {
	AppointmentCreated(a *model.Appointment)
	AppointmentStatusChanged(a *model.Appointment, from model.AppointmentStatus)
}

// Service is the public entry point of the scheduling core.
type Service struct {
	store     Store
	authorize Authorizer
	notifier  Notifier
	clock     func() time.Time
	log       zerolog.Logger
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func WithAuthorizer(a Authorizer) Option {
	return func(s *Service) { s.authorize = a }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(store Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		authorize: DefaultAuthorizer,
		clock:     time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAppointment validates and persists a new booking. Typed validation
// errors surface unmodified; a transaction aborted by a concurrent writer is
// retried once before surfacing CONFLICT.
func (s *Service) CreateAppointment(ctx context.Context, creatorID string, in CreateInput) (*model.Appointment, error) {
	if in.DurationMinutes == 0 && in.Service.Valid() {
		in.DurationMinutes = in.Service.DefaultDurationMinutes()
	}

	appt, err := s.withRetry(ctx, func() (*model.Appointment, error) {
		return s.createOnce(ctx, creatorID, in)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("creator_id", creatorID).
		Time("start", appt.StartTime).
		Int("duration_min", appt.DurationMinutes).
		Msg("appointment created")
	if s.notifier != nil {
		s.notifier.AppointmentCreated(appt)
	}
	return appt, nil
}

func (s *Service) createOnce(ctx context.Context, creatorID string, in CreateInput) (*model.Appointment, error) {
	now := s.clock()
	var created *model.Appointment

	err := s.store.RunInTx(ctx, func(tx Tx) error {
		attendees := dedupeSorted(in.AttendeeIDs)
		if err := tx.LockAttendees(ctx, attendees); err != nil {
			return err
		}
		if err := ValidateCreate(ctx, tx, in, now); err != nil {
			return err
		}
		a := &model.Appointment{
			ID:              uuid.New().String(),
			Title:           in.Title,
			Description:     in.Description,
			StartTime:       in.StartTime,
			DurationMinutes: in.DurationMinutes,
			EndTime:         in.End(),
			Status:          model.StatusScheduled,
			Service:         in.Service,
			CreatorID:       creatorID,
			AttendeeIDs:     attendees,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.InsertAppointment(ctx, a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TransitionStatus moves an appointment through its lifecycle on behalf of
// an actor. The appointment is row-locked while the transition is checked
// and applied.
func (s *Service) TransitionStatus(ctx context.Context, appointmentID string, requested model.AppointmentStatus, actorID string) (*model.Appointment, error) {
	appt, from, err := s.transitionWithRetry(ctx, appointmentID, requested, actorID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("actor_id", actorID).
		Str("from", string(from)).
		Str("to", string(requested)).
		Msg("appointment status changed")
	if s.notifier != nil {
		s.notifier.AppointmentStatusChanged(appt, from)
	}
	return appt, nil
}

func (s *Service) transitionWithRetry(ctx context.Context, id string, requested model.AppointmentStatus, actorID string) (*model.Appointment, model.AppointmentStatus, error) {
	var from model.AppointmentStatus
	appt, err := s.withRetry(ctx, func() (*model.Appointment, error) {
		var out *model.Appointment
		err := s.store.RunInTx(ctx, func(tx Tx) error {
			a, err := tx.AppointmentForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if a == nil {
				return errNotFound(id)
			}
			allowed := s.authorize(actorID, a, requested)
			if err := ValidateStatusChange(a, requested, allowed); err != nil {
				return err
			}
			now := s.clock()
			if err := tx.UpdateAppointmentStatus(ctx, a.ID, requested, now); err != nil {
				return err
			}
			from = a.Status
			a.Status = requested
			a.UpdatedAt = now
			out = a
			return nil
		})
		return out, err
	})
	return appt, from, err
}

// withRetry runs attempt once, and once more if the transaction was aborted
// by a concurrent writer. Deterministic validation outcomes are never
// retried. A second abort surfaces as CONFLICT.
func (s *Service) withRetry(ctx context.Context, attempt func() (*model.Appointment, error)) (*model.Appointment, error) {
	a, err := attempt()
	if err == nil || Deterministic(err) {
		return a, err
	}
	if !errors.Is(err, ErrTxSerialization) {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.log.Debug().Err(err).Msg("transaction aborted, retrying once")
	a, err = attempt()
	if err == nil || Deterministic(err) {
		return a, err
	}
	if errors.Is(err, ErrTxSerialization) {
		return nil, errConflict()
	}
	return nil, err
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	// Lock order must be global to avoid deadlock between creates that
	// share a subset of attendees.
	sort.Strings(out)
	return out
}
