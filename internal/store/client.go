package store

import (
	"context"

	"salon-booking-api/internal/model"
)

const clientColumns = `id, user_id, phone, service_type, status, category,
		notes, loyalty_points, total_spent, visit_count, last_visit, created_at, updated_at`

// CreateClient opts a user into the client role. The unique constraint on
// user_id enforces at most one profile per account.
func (s *Store) CreateClient(ctx context.Context, c *model.Client) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO clients (id, user_id, phone, service_type, status, category, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at, updated_at`,
		c.ID, c.UserID, c.Phone, c.Service, c.Status, c.Category, c.Notes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return classify(err)
}

func (s *Store) ClientByUserID(ctx context.Context, userID string) (*model.Client, error) {
	c := &model.Client{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.Phone, &c.Service, &c.Status, &c.Category,
		&c.Notes, &c.LoyaltyPoints, &c.TotalSpent, &c.VisitCount, &c.LastVisit,
		&c.CreatedAt, &c.UpdatedAt)
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *model.Client) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE clients
		 SET phone = $1, service_type = $2, status = $3, category = $4, notes = $5, updated_at = NOW()
		 WHERE user_id = $6`,
		c.Phone, c.Service, c.Status, c.Category, c.Notes, c.UserID,
	)
	return err
}

// RecordClientVisit accrues loyalty points, spend and visit count after a
// completed service, then re-derives the client tier from the new totals.
// Users without a client profile have nothing to accrue against.
func (s *Store) RecordClientVisit(ctx context.Context, userID string, points int, cost float64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var visits int
	var spent float64
	err = tx.QueryRow(ctx,
		`UPDATE clients
		 SET loyalty_points = loyalty_points + $1,
		     total_spent = total_spent + $2,
		     visit_count = visit_count + 1,
		     last_visit = NOW(),
		     updated_at = NOW()
		 WHERE user_id = $3
		 RETURNING visit_count, total_spent`,
		points, cost, userID,
	).Scan(&visits, &spent)
	if noRows(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE clients SET category = $1 WHERE user_id = $2`,
		model.CategoryFor(visits, spent), userID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListClients(ctx context.Context, status model.ClientStatus) ([]model.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Phone, &c.Service, &c.Status, &c.Category,
			&c.Notes, &c.LoyaltyPoints, &c.TotalSpent, &c.VisitCount, &c.LastVisit,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
