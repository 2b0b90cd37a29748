// Package identity maps between the two identifier schemes a user carries:
// the stable UUID used for internal references and the human-friendly
// sequential number shown on the dashboard.
//
// Sequential numbers are assigned by the store at insert time, in the same
// statement as the row insert (nextval + RETURNING), so they are monotonic,
// crash-safe and never reused — even for accounts that are later disabled.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"salon-booking-api/internal/model"
)

var ErrNotFound = errors.New("user not found")

// UserSource is the read side the resolver needs; the pgx store implements it.
type UserSource interface {
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserBySequentialID(ctx context.Context, seq int64) (*model.User, error)
}

type Resolver struct {
	users UserSource
}

func NewResolver(users UserSource) *Resolver {
	return &Resolver{users: users}
}

// Resolve looks a user up by either identifier scheme. An all-digit key is
// treated as a sequential display number, anything else must parse as the
// stable UUID.
func (r *Resolver) Resolve(ctx context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, ErrNotFound
	}

	if seq, err := strconv.ParseInt(key, 10, 64); err == nil {
		if seq <= 0 {
			return nil, ErrNotFound
		}
		u, err := r.users.UserBySequentialID(ctx, seq)
		if err != nil {
			return nil, fmt.Errorf("resolving sequential id %d: %w", seq, err)
		}
		if u == nil {
			return nil, ErrNotFound
		}
		return u, nil
	}

	if _, err := uuid.Parse(key); err != nil {
		return nil, ErrNotFound
	}
	u, err := r.users.UserByID(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolving user %s: %w", key, err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}
