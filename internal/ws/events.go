package ws

import (
	"encoding/json"
	"time"

	"salon-booking-api/internal/model"
)

// Server -> client event types consumed by the dashboard.
const (
	EventAppointmentCreated = "appointment.created"
	EventAppointmentStatus  = "appointment.status"
	EventPong               = "pong"
)

// Client -> server event types.
const (
	EventPing = "ping"
)

// Event is the envelope for every WebSocket message.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type AppointmentPayload struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	StartTime time.Time               `json:"start_time"`
	EndTime   time.Time               `json:"end_time"`
	Status    model.AppointmentStatus `json:"status"`
	CreatorID string                  `json:"creator_id"`
}

type StatusPayload struct {
	ID   string                  `json:"id"`
	From model.AppointmentStatus `json:"from"`
	To   model.AppointmentStatus `json:"to"`
}

func appointmentPayload(a *model.Appointment) AppointmentPayload {
	return AppointmentPayload{
		ID:        a.ID,
		Title:     a.Title,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    a.Status,
		CreatorID: a.CreatorID,
	}
}
