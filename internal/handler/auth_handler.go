package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"salon-booking-api/internal/auth"
	"salon-booking-api/internal/model"
	"salon-booking-api/internal/store"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type authResponse struct {
	UserID       string `json:"user_id"`
	SequentialID int64  `json:"sequential_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}
	if len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "password too short")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return h.respondError(c, err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Enabled:      true,
	}
	if err := h.store.CreateUser(c.Request().Context(), u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// don't reveal which field collided
			return echo.NewHTTPError(http.StatusConflict, "registration failed")
		}
		return h.respondError(c, err)
	}

	return h.issueTokens(c, u, http.StatusCreated)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	u, err := h.store.UserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return h.respondError(c, err)
	}
	if u == nil || !u.Enabled || !auth.CheckPassword(u.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	return h.issueTokens(c, u, http.StatusOK)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates the presented refresh token and mints a new access token.
// A revoked token is treated as theft: the whole family is revoked.
func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh_token is required")
	}
	ctx := c.Request().Context()

	rt, err := h.store.RefreshTokenByHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		return h.respondError(c, err)
	}
	if rt == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if rt.Revoked {
		_ = h.store.RevokeAllRefreshTokens(ctx, rt.UserID)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if !rt.Usable(time.Now()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token expired")
	}

	u, err := h.store.UserByID(ctx, rt.UserID)
	if err != nil {
		return h.respondError(c, err)
	}
	if u == nil || !u.Enabled {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return h.respondError(c, err)
	}
	if _, err := h.store.RotateRefreshToken(ctx, rt.ID, u.ID, newHash, time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		return h.respondError(c, err)
	}

	access, err := auth.MakeAccessToken(u.ID, u.Admin, h.secret)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, authResponse{
		UserID:       u.ID,
		SequentialID: u.SequentialID,
		AccessToken:  access,
		RefreshToken: newRaw,
	})
}

func (h *Handler) issueTokens(c echo.Context, u *model.User, status int) error {
	access, err := auth.MakeAccessToken(u.ID, u.Admin, h.secret)
	if err != nil {
		return h.respondError(c, err)
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return h.respondError(c, err)
	}
	if _, err := h.store.CreateRefreshToken(c.Request().Context(), u.ID, hash, time.Now().Add(auth.RefreshTokenTTL)); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(status, authResponse{
		UserID:       u.ID,
		SequentialID: u.SequentialID,
		AccessToken:  access,
		RefreshToken: raw,
	})
}
