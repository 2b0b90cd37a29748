package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"salon-booking-api/internal/model"
	"salon-booking-api/internal/scheduling"
)

// apptTx implements scheduling.Tx on top of one pgx transaction.
type apptTx struct {
	tx pgx.Tx
}

// LockAttendees takes a transaction-scoped advisory lock per attendee so
// that concurrent creates sharing an attendee serialize around the
// overlap-check-then-insert critical section. Ids arrive sorted; keeping a
// global lock order prevents deadlocks.
func (t *apptTx) LockAttendees(ctx context.Context, attendeeIDs []string) error {
	for _, id := range attendeeIDs {
		if _, err := t.tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1))`, "attendee:"+id,
		); err != nil {
			return err
		}
	}
	return nil
}

func (t *apptTx) AppointmentsForAttendee(ctx context.Context, attendeeID string) ([]scheduling.Booking, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT a.id, a.start_time, a.end_time, a.status
		 FROM appointments a
		 JOIN appointment_attendees aa ON aa.appointment_id = a.id
		 WHERE aa.user_id = $1
		   AND a.status NOT IN ($2, $3)
		 ORDER BY a.start_time`,
		attendeeID, model.StatusCancelled, model.StatusDeclined,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scheduling.Booking
	for rows.Next() {
		var b scheduling.Booking
		if err := rows.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.Status); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (t *apptTx) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO appointments
		   (id, title, description, start_time, duration_minutes, end_time,
		    status, service_type, creator_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.Title, a.Description, a.StartTime, a.DurationMinutes, a.EndTime,
		a.Status, a.Service, a.CreatorID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	for _, uid := range a.AttendeeIDs {
		if _, err := t.tx.Exec(ctx,
			`INSERT INTO appointment_attendees (appointment_id, user_id) VALUES ($1,$2)`,
			a.ID, uid,
		); err != nil {
			return err
		}
	}
	return nil
}

func (t *apptTx) AppointmentForUpdate(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := t.tx.QueryRow(ctx,
		`SELECT id, title, description, start_time, duration_minutes, end_time,
		        status, service_type, creator_id, created_at, updated_at
		 FROM appointments WHERE id = $1 FOR UPDATE`, id,
	).Scan(&a.ID, &a.Title, &a.Description, &a.StartTime, &a.DurationMinutes,
		&a.EndTime, &a.Status, &a.Service, &a.CreatorID, &a.CreatedAt, &a.UpdatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(ctx,
		`SELECT user_id FROM appointment_attendees WHERE appointment_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		a.AttendeeIDs = append(a.AttendeeIDs, uid)
	}
	return a, rows.Err()
}

func (t *apptTx) UpdateAppointmentStatus(ctx context.Context, id string, status model.AppointmentStatus, updatedAt time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`,
		status, updatedAt, id,
	)
	return err
}

// --- pool-level reads used by the API layer ---

const apptColumns = `id, title, description, start_time, duration_minutes, end_time,
		        status, service_type, creator_id, created_at, updated_at`

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.Description, &a.StartTime, &a.DurationMinutes,
		&a.EndTime, &a.Status, &a.Service, &a.CreatorID, &a.CreatedAt, &a.UpdatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM appointment_attendees WHERE appointment_id = $1 ORDER BY user_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		a.AttendeeIDs = append(a.AttendeeIDs, uid)
	}
	return a, rows.Err()
}

// ListAppointmentsForUser returns appointments the user created or attends,
// inside [from, to), newest window filters first applied by the handler.
func (s *Store) ListAppointmentsForUser(ctx context.Context, userID string, from, to time.Time) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT a.id, a.title, a.description, a.start_time, a.duration_minutes,
		        a.end_time, a.status, a.service_type, a.creator_id, a.created_at, a.updated_at
		 FROM appointments a
		 LEFT JOIN appointment_attendees aa ON aa.appointment_id = a.id
		 WHERE (a.creator_id = $1 OR aa.user_id = $1)
		   AND a.start_time >= $2 AND a.start_time < $3
		 ORDER BY a.start_time`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.StartTime, &a.DurationMinutes,
			&a.EndTime, &a.Status, &a.Service, &a.CreatorID, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
