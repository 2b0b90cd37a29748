package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 64
)

// Client is one dashboard WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Serve upgrades the request and pumps events until either side closes.
// The caller has already authenticated userID.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin is enforced by the CORS layer
	})
	if err != nil {
		return err
	}
	conn.SetReadLimit(maxMessageSize)

	c := &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
	}
	hub.register <- c

	go c.writePump(r.Context())
	c.readPump(r.Context())
	return nil
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		if err := wsjson.Read(ctx, c.conn, &event); err != nil {
			return
		}
		c.handleInbound(&event)
	}
}

// handleInbound answers a ping on this connection only; other tabs of the
// same user did not ask.
func (c *Client) handleInbound(event *Event) {
	if event.Type != EventPing {
		return
	}
	pong, err := NewEvent(EventPong, nil)
	if err != nil {
		return
	}
	data, err := json.Marshal(pong)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump(ctx context.Context) {
	for data := range c.send {
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := c.conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			return
		}
	}
}
