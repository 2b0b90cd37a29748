package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"salon-booking-api/internal/identity"
	"salon-booking-api/internal/middleware"
	"salon-booking-api/internal/scheduling"
	"salon-booking-api/internal/store"
	"salon-booking-api/internal/ws"
)

type Handler struct {
	store    *store.Store
	svc      *scheduling.Service
	resolver *identity.Resolver
	hub      *ws.Hub
	secret   string
	log      zerolog.Logger
}

func New(st *store.Store, svc *scheduling.Service, resolver *identity.Resolver, hub *ws.Hub, secret string, log zerolog.Logger) *Handler {
	return &Handler{store: st, svc: svc, resolver: resolver, hub: hub, secret: secret, log: log}
}

// RegisterRoutes wires the public API. Credential endpoints stay outside
// the auth group and get the brute-force rate limit instead.
func (h *Handler) RegisterRoutes(e *echo.Echo, rl *middleware.RateLimiter) {
	open := e.Group("/api/v1")
	open.POST("/register", h.Register, middleware.RateLimit(rl))
	open.POST("/login", h.Login, middleware.RateLimit(rl))
	open.POST("/refresh", h.Refresh, middleware.RateLimit(rl))

	api := e.Group("/api/v1", middleware.Auth(h.secret))
	api.GET("/users/:key", h.GetUser)
	api.GET("/me", h.Me)

	api.POST("/clients", h.CreateClient)
	api.GET("/clients/me", h.MyClient)
	api.PUT("/clients/me", h.UpdateClient)
	api.GET("/clients", h.ListClients)

	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments/:id/status", h.TransitionStatus)

	api.GET("/ws", h.Websocket)
}

// errorBody is the wire shape of every rejected mutation: a stable machine
// code plus a human-readable message.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps the scheduling error taxonomy onto HTTP statuses.
// Unrecognized errors become an opaque 500 so internals never leak.
func (h *Handler) respondError(c echo.Context, err error) error {
	if e, ok := scheduling.AsError(err); ok {
		status := http.StatusBadRequest
		switch e.Code {
		case scheduling.CodeTimeConflict, scheduling.CodeInvalidTransition, scheduling.CodeConflict:
			status = http.StatusConflict
		case scheduling.CodeNotAuthorized:
			status = http.StatusForbidden
		case scheduling.CodeNotFound:
			status = http.StatusNotFound
		}
		return c.JSON(status, errorBody{Code: string(e.Code), Message: e.Message})
	}

	h.log.Error().Err(err).Str("path", c.Path()).Msg("internal error")
	return c.JSON(http.StatusInternalServerError, errorBody{
		Code:    "INTERNAL",
		Message: "internal error",
	})
}
