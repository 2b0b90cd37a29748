package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"salon-booking-api/internal/middleware"
	"salon-booking-api/internal/model"
	"salon-booking-api/internal/scheduling"
	"salon-booking-api/internal/ws"
)

type createAppointmentRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	ServiceType     string    `json:"service_type"`
	AttendeeIDs     []string  `json:"attendee_ids"`
}

type appointmentResponse struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description,omitempty"`
	StartTime       time.Time               `json:"start_time"`
	DurationMinutes int                     `json:"duration_minutes"`
	EndTime         time.Time               `json:"end_time"`
	Status          model.AppointmentStatus `json:"status"`
	ServiceType     model.ServiceType       `json:"service_type"`
	EstimatedCost   float64                 `json:"estimated_cost"`
	CreatorID       string                  `json:"creator_id"`
	AttendeeIDs     []string                `json:"attendee_ids"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func toResponse(a *model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		StartTime:       a.StartTime,
		DurationMinutes: a.DurationMinutes,
		EndTime:         a.EndTime,
		Status:          a.Status,
		ServiceType:     a.Service,
		EstimatedCost:   a.Service.EstimatedCost(a.DurationMinutes),
		CreatorID:       a.CreatorID,
		AttendeeIDs:     a.AttendeeIDs,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	userID := middleware.UserID(c)

	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	svc := model.ServiceType(req.ServiceType)
	if req.ServiceType != "" && !svc.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown service type")
	}
	if req.ServiceType == "" {
		svc = model.ServiceOther
	}

	attendees := req.AttendeeIDs
	if len(attendees) == 0 {
		// booking for yourself is the common dashboard path
		attendees = []string{userID}
	}

	appt, err := h.svc.CreateAppointment(c.Request().Context(), userID, scheduling.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Service:         svc,
		AttendeeIDs:     attendees,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toResponse(appt))
}

func (h *Handler) ListAppointments(c echo.Context) error {
	userID := middleware.UserID(c)

	from := time.Now().AddDate(0, 0, -30)
	to := time.Now().AddDate(0, 2, 0)
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339")
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339")
		}
		to = t
	}

	appts, err := h.store.ListAppointmentsForUser(c.Request().Context(), userID, from, to)
	if err != nil {
		return h.respondError(c, err)
	}

	status := model.AppointmentStatus(c.QueryParam("status"))
	out := make([]appointmentResponse, 0, len(appts))
	for i := range appts {
		if status != "" && appts[i].Status != status {
			continue
		}
		out = append(out, toResponse(&appts[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	userID := middleware.UserID(c)

	a, err := h.store.GetAppointment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	// hide existence from non-participants
	if a == nil || (a.CreatorID != userID && !a.HasAttendee(userID) && !middleware.IsAdmin(c)) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.JSON(http.StatusOK, toResponse(a))
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) TransitionStatus(c echo.Context) error {
	userID := middleware.UserID(c)

	var req transitionRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	appt, err := h.svc.TransitionStatus(c.Request().Context(),
		c.Param("id"), model.AppointmentStatus(req.Status), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	if appt.Status == model.StatusCompleted {
		h.recordVisits(c.Request().Context(), appt)
	}
	return c.JSON(http.StatusOK, toResponse(appt))
}

// recordVisits accrues loyalty metrics for every attendee with a client
// profile once their service is completed. Accrual is best-effort: the
// transition has already committed.
func (h *Handler) recordVisits(ctx context.Context, a *model.Appointment) {
	points := a.Service.LoyaltyPoints()
	cost := a.Service.EstimatedCost(a.DurationMinutes)
	for _, uid := range a.AttendeeIDs {
		if err := h.store.RecordClientVisit(ctx, uid, points, cost); err != nil {
			h.log.Error().Err(err).
				Str("appointment_id", a.ID).
				Str("user_id", uid).
				Msg("recording client visit")
		}
	}
}

// Websocket upgrades an authenticated dashboard session for live updates.
func (h *Handler) Websocket(c echo.Context) error {
	return ws.Serve(h.hub, c.Response(), c.Request(), middleware.UserID(c))
}
