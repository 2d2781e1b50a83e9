package websocket

import (
	"encoding/json"
	"time"

	"socialite-be/internal/dto"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// UserID associated with this connection
	UserID uuid.UUID

	// Buffered channel of outbound messages.
	Send chan []byte
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type typingPayload struct {
	ConversationId uuid.UUID `json:"conversationId"`
	ToUserId       uuid.UUID `json:"toUserId"`
}

type markSeenPayload struct {
	ConversationId uuid.UUID `json:"conversationId"`
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			break
		}
		c.dispatch(raw)
	}
}

// dispatch routes one inbound frame to the event router. The sender identity
// always comes from the authenticated connection, never from the payload.
func (c *Client) dispatch(raw []byte) {
	if c.Hub.router == nil {
		return
	}

	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.Hub.logger.Warn("Client", "Malformed frame", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
		return
	}

	switch frame.Event {
	case dto.SocketInboundTyping:
		var p typingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		c.Hub.router.OnTyping(c.UserID, p.ToUserId, p.ConversationId)

	case dto.SocketInboundStopTyping:
		var p typingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		c.Hub.router.OnStopTyping(c.UserID, p.ToUserId, p.ConversationId)

	case dto.SocketInboundMarkSeen:
		var p markSeenPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		c.Hub.router.OnMarkSeen(c.UserID, p.ConversationId)

	default:
		c.Hub.logger.Warn("Client", "Unknown inbound event", map[string]interface{}{"user_id": c.UserID, "event": frame.Event})
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
