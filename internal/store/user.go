package store

import (
	"context"

	"salon-booking-api/internal/model"
)

const userColumns = `id, sequential_id, username, email, password_hash,
		first_name, last_name, enabled, is_admin, created_at, updated_at`

// CreateUser inserts the row and draws the sequential display number in the
// same statement. nextval never hands out the same value twice, so the
// number is unique and monotonic even across crashed transactions.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash, first_name, last_name, enabled, is_admin)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING sequential_id, created_at, updated_at`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Enabled, u.Admin,
	).Scan(&u.SequentialID, &u.CreatedAt, &u.UpdatedAt)
	return classify(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) UserBySequentialID(ctx context.Context, seq int64) (*model.User, error) {
	return s.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE sequential_id = $1`, seq)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// SetUserEnabled soft-disables (or re-enables) an account. Rows are never
// deleted; appointments and client profiles keep their references.
func (s *Store) SetUserEnabled(ctx context.Context, id string, enabled bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET enabled = $1, updated_at = NOW() WHERE id = $2`, enabled, id)
	return err
}

func (s *Store) scanUser(ctx context.Context, query string, arg any) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.SequentialID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Enabled, &u.Admin, &u.CreatedAt, &u.UpdatedAt,
	)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
