package websocket

import (
	"encoding/json"
	"sync"

	"socialite-be/internal/dto"
	"socialite-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Frame is the envelope for every outbound socket payload.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// EventRouter receives inbound client events. The realtime service
// implements it; it is injected after construction so the hub stays free of
// service dependencies.
type EventRouter interface {
	OnTyping(fromUserID, toUserID, conversationID uuid.UUID)
	OnStopTyping(fromUserID, toUserID, conversationID uuid.UUID)
	OnMarkSeen(userID, conversationID uuid.UUID)
	OnDisconnect(userID uuid.UUID)
}

type Hub struct {
	// Registered clients map: UserID -> single active connection.
	// A fresh connection for a user replaces (and closes) the previous one.
	clients map[uuid.UUID]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	router EventRouter

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]*Client),
		logger:     log,
	}
}

// SetRouter must be called before Run. It exists because the hub and the
// realtime service are constructed in dependency order and need each other.
func (h *Hub) SetRouter(router EventRouter) {
	h.router = router
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok {
				// One live connection per user. Closing Send makes the old
				// writePump exit, which tears the old connection down.
				close(old.Send)
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})
			h.broadcastOnlineUsers()

		case client := <-h.unregister:
			h.mu.Lock()
			current, ok := h.clients[client.UserID]
			// Pointer compare: a stale disconnect from a replaced connection
			// must not evict the live one.
			removed := ok && current == client
			if removed {
				delete(h.clients, client.UserID)
				close(client.Send)
			}
			h.mu.Unlock()
			if removed {
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
				if h.router != nil {
					// Last-seen stamping touches the database; keep it off
					// the hub loop.
					go h.router.OnDisconnect(client.UserID)
				}
				h.broadcastOnlineUsers()
			}
		}
	}
}

// SendToUser delivers one event to the user's connection. Returns false when
// the user has no live connection; the caller decides whether that matters.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload interface{}) bool {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal frame", map[string]interface{}{"event": event, "error": err.Error()})
		return false
	}

	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case client.Send <- data:
		return true
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
		h.unregister <- client
		return false
	}
}

// IsOnline reports whether the user currently holds a live connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	_, ok := h.clients[userID]
	h.mu.RUnlock()
	return ok
}

// OnlineUserIDs returns the ids of all connected users as strings, the shape
// the OnlineUser event carries.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id.String())
	}
	h.mu.RUnlock()
	return ids
}

func (h *Hub) broadcastOnlineUsers() {
	ids := h.OnlineUserIDs()
	data, err := json.Marshal(Frame{Event: dto.SocketOnlineUsers, Data: ids})
	if err != nil {
		return
	}

	h.mu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer. Drop this frame; the list is resent on the
			// next presence change anyway.
		}
	}
	h.mu.RUnlock()
}
