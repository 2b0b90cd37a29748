package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"salon-booking-api/internal/scheduling"
)

// ErrDuplicate maps unique-constraint violations (email, username, one
// client profile per user) for the handler layer.
var ErrDuplicate = errors.New("duplicate record")

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// RunInTx opens one transaction for the scheduling critical section. The
// advisory locks taken inside are transaction-scoped, so they drop on
// commit or rollback.
func (s *Store) RunInTx(ctx context.Context, fn func(tx scheduling.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&apptTx{tx: tx}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// classify tags transient transaction aborts so the scheduling service can
// retry them. Everything else passes through unchanged.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %v", scheduling.ErrTxSerialization, err)
		}
		// unique_violation
		if pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		}
	}
	return err
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
