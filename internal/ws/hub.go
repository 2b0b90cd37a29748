package ws

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Hub tracks connected dashboard sessions by user id and routes events to
// them. A user may hold several connections (multiple tabs).
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	direct     chan *directMsg

	log zerolog.Logger
}

type directMsg struct {
	userID string
	data   []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *directMsg, 256),
		log:        log,
	}
}

// Run is the hub's event loop. Call it in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*Client]bool)
			}
			h.clients[c.userID][c] = true
			h.log.Debug().Str("user_id", c.userID).Msg("ws connected")

		case c := <-h.unregister:
			if conns, ok := h.clients[c.userID]; ok && conns[c] {
				delete(conns, c)
				if len(conns) == 0 {
					delete(h.clients, c.userID)
				}
				close(c.send)
				h.log.Debug().Str("user_id", c.userID).Msg("ws disconnected")
			}

		case msg := <-h.direct:
			for c := range h.clients[msg.userID] {
				select {
				case c.send <- msg.data:
				default:
					// send buffer full, drop the connection
					delete(h.clients[msg.userID], c)
					close(c.send)
				}
			}
		}
	}
}

// SendToUser delivers an event to every open connection of one user.
func (h *Hub) SendToUser(userID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("ws marshal")
		return
	}
	h.direct <- &directMsg{userID: userID, data: data}
}
