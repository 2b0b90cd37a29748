package ws

import (
	"salon-booking-api/internal/model"
)

// HubNotifier implements scheduling.Notifier over the WebSocket hub,
// pushing lifecycle events to everyone involved in the appointment.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) AppointmentCreated(a *model.Appointment) {
	evt, err := NewEvent(EventAppointmentCreated, appointmentPayload(a))
	if err != nil {
		return
	}
	n.fanOut(a, evt)
}

func (n *HubNotifier) AppointmentStatusChanged(a *model.Appointment, from model.AppointmentStatus) {
	evt, err := NewEvent(EventAppointmentStatus, StatusPayload{ID: a.ID, From: from, To: a.Status})
	if err != nil {
		return
	}
	n.fanOut(a, evt)
}

func (n *HubNotifier) fanOut(a *model.Appointment, evt *Event) {
	n.hub.SendToUser(a.CreatorID, evt)
	for _, uid := range a.AttendeeIDs {
		if uid != a.CreatorID {
			n.hub.SendToUser(uid, evt)
		}
	}
}
