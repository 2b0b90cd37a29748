package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"salon-booking-api/internal/middleware"
	"salon-booking-api/internal/model"
	"salon-booking-api/internal/store"
)

type clientRequest struct {
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Notes   string `json:"notes"`
}

type clientResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	Phone         string               `json:"phone"`
	Service       model.ServiceType    `json:"service"`
	Status        model.ClientStatus   `json:"status"`
	Category      model.ClientCategory `json:"category"`
	Notes         string               `json:"notes,omitempty"`
	LoyaltyPoints int                  `json:"loyalty_points"`
	TotalSpent    float64              `json:"total_spent"`
	VisitCount    int                  `json:"visit_count"`
	LastVisit     *time.Time           `json:"last_visit,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toClientResponse(c *model.Client) clientResponse {
	return clientResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Phone:         c.Phone,
		Service:       c.Service,
		Status:        c.Status,
		Category:      c.Category,
		Notes:         c.Notes,
		LoyaltyPoints: c.LoyaltyPoints,
		TotalSpent:    c.TotalSpent,
		VisitCount:    c.VisitCount,
		LastVisit:     c.LastVisit,
		CreatedAt:     c.CreatedAt,
	}
}

// CreateClient opts the authenticated user into the client role.
func (h *Handler) CreateClient(c echo.Context) error {
	userID := middleware.UserID(c)

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Phone == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "phone is required")
	}
	svc := model.ServiceType(req.Service)
	if !svc.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown service type")
	}

	cl := &model.Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Phone:    req.Phone,
		Service:  svc,
		Status:   model.ClientActive,
		Category: model.CategoryNew,
		Notes:    req.Notes,
	}
	if err := h.store.CreateClient(c.Request().Context(), cl); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "client profile already exists")
		}
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toClientResponse(cl))
}

func (h *Handler) MyClient(c echo.Context) error {
	cl, err := h.store.ClientByUserID(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	if cl == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no client profile")
	}
	return c.JSON(http.StatusOK, toClientResponse(cl))
}

func (h *Handler) UpdateClient(c echo.Context) error {
	userID := middleware.UserID(c)
	ctx := c.Request().Context()

	cl, err := h.store.ClientByUserID(ctx, userID)
	if err != nil {
		return h.respondError(c, err)
	}
	if cl == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no client profile")
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Phone != "" {
		cl.Phone = req.Phone
	}
	if req.Service != "" {
		svc := model.ServiceType(req.Service)
		if !svc.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown service type")
		}
		cl.Service = svc
	}
	if req.Notes != "" {
		cl.Notes = req.Notes
	}

	if err := h.store.UpdateClient(ctx, cl); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toClientResponse(cl))
}

// ListClients is staff-only.
func (h *Handler) ListClients(c echo.Context) error {
	if !middleware.IsAdmin(c) {
		return echo.NewHTTPError(http.StatusForbidden, "staff only")
	}
	clients, err := h.store.ListClients(c.Request().Context(), model.ClientStatus(c.QueryParam("status")))
	if err != nil {
		return h.respondError(c, err)
	}
	out := make([]clientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, toClientResponse(&clients[i]))
	}
	return c.JSON(http.StatusOK, out)
}
