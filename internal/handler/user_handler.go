package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"salon-booking-api/internal/identity"
	"salon-booking-api/internal/middleware"
	"salon-booking-api/internal/model"
)

type userResponse struct {
	ID           string    `json:"id"`
	SequentialID int64     `json:"sequential_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserResponse(u *model.User, includeEmail bool) userResponse {
	out := userResponse{
		ID:           u.ID,
		SequentialID: u.SequentialID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Enabled:      u.Enabled,
		CreatedAt:    u.CreatedAt,
	}
	if includeEmail {
		out.Email = u.Email
	}
	return out
}

// GetUser resolves a user by either identifier scheme: the stable UUID or
// the sequential display number shown on the dashboard.
func (h *Handler) GetUser(c echo.Context) error {
	u, err := h.resolver.Resolve(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return h.respondError(c, err)
	}
	self := u.ID == middleware.UserID(c)
	return c.JSON(http.StatusOK, toUserResponse(u, self || middleware.IsAdmin(c)))
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.store.UserByID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, toUserResponse(u, true))
}
