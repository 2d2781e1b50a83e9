package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"socialite-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type routerCall struct {
	Name           string
	From           uuid.UUID
	To             uuid.UUID
	ConversationID uuid.UUID
}

type fakeRouter struct {
	mu    sync.Mutex
	calls []routerCall
}

func (r *fakeRouter) record(c routerCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *fakeRouter) OnTyping(from, to, conversationID uuid.UUID) {
	r.record(routerCall{Name: "typing", From: from, To: to, ConversationID: conversationID})
}

func (r *fakeRouter) OnStopTyping(from, to, conversationID uuid.UUID) {
	r.record(routerCall{Name: "stopTyping", From: from, To: to, ConversationID: conversationID})
}

func (r *fakeRouter) OnMarkSeen(userID, conversationID uuid.UUID) {
	r.record(routerCall{Name: "markSeen", From: userID, ConversationID: conversationID})
}

func (r *fakeRouter) OnDisconnect(userID uuid.UUID) {
	r.record(routerCall{Name: "disconnect", From: userID})
}

func (r *fakeRouter) named(name string) []routerCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []routerCall
	for _, c := range r.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 16)}
}

func startHub(router EventRouter) *Hub {
	hub := NewHub(nopLogger{})
	if router != nil {
		hub.SetRouter(router)
	}
	go hub.Run()
	return hub
}

func waitOnline(t *testing.T, hub *Hub, userID uuid.UUID, want bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.IsOnline(userID) == want
	}, time.Second, 5*time.Millisecond)
}

// waitClosed drains buffered frames until the channel is closed.
func waitClosed(t *testing.T, ch chan []byte) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel was not closed")
		}
	}
}

func TestHubSendToUser(t *testing.T) {
	hub := startHub(nil)
	userID := uuid.New()
	client := newTestClient(hub, userID)

	hub.register <- client
	waitOnline(t, hub, userID, true)

	ok := hub.SendToUser(userID, dto.SocketSendMessage, map[string]string{"content": "hi"})
	require.True(t, ok)

	// The presence broadcast from registration comes first, then our frame.
	var frame Frame
	for {
		select {
		case raw := <-client.Send:
			require.NoError(t, json.Unmarshal(raw, &frame))
		case <-time.After(time.Second):
			t.Fatal("frame never arrived")
		}
		if frame.Event == dto.SocketSendMessage {
			return
		}
	}
}

func TestHubSendToOfflineUser(t *testing.T) {
	hub := startHub(nil)
	require.False(t, hub.SendToUser(uuid.New(), dto.SocketSendMessage, nil))
}

func TestHubReplacesExistingConnection(t *testing.T) {
	hub := startHub(nil)
	userID := uuid.New()

	first := newTestClient(hub, userID)
	hub.register <- first
	waitOnline(t, hub, userID, true)

	second := newTestClient(hub, userID)
	hub.register <- second

	// The old connection's send channel gets closed, the user stays online
	// and frames now land on the fresh connection.
	waitClosed(t, first.Send)
	require.True(t, hub.IsOnline(userID))

	require.True(t, hub.SendToUser(userID, dto.SocketSeenMessages, nil))
	require.Eventually(t, func() bool {
		select {
		case raw := <-second.Send:
			var frame Frame
			return json.Unmarshal(raw, &frame) == nil && frame.Event == dto.SocketSeenMessages
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestHubStaleUnregisterKeepsLiveConnection(t *testing.T) {
	router := &fakeRouter{}
	hub := startHub(router)
	userID := uuid.New()

	first := newTestClient(hub, userID)
	hub.register <- first
	waitOnline(t, hub, userID, true)

	second := newTestClient(hub, userID)
	hub.register <- second
	waitClosed(t, first.Send)

	// The replaced connection reports its teardown late. That must not evict
	// the live connection, and no disconnect fires.
	hub.unregister <- first

	require.Never(t, func() bool {
		return !hub.IsOnline(userID) || len(router.named("disconnect")) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestHubUnregisterFiresDisconnect(t *testing.T) {
	router := &fakeRouter{}
	hub := startHub(router)
	userID := uuid.New()

	client := newTestClient(hub, userID)
	hub.register <- client
	waitOnline(t, hub, userID, true)

	hub.unregister <- client
	waitOnline(t, hub, userID, false)

	require.Eventually(t, func() bool {
		calls := router.named("disconnect")
		return len(calls) == 1 && calls[0].From == userID
	}, time.Second, 5*time.Millisecond)
}

func TestHubPresenceBroadcast(t *testing.T) {
	hub := startHub(nil)
	alice, bob := uuid.New(), uuid.New()

	aliceClient := newTestClient(hub, alice)
	hub.register <- aliceClient
	waitOnline(t, hub, alice, true)

	bobClient := newTestClient(hub, bob)
	hub.register <- bobClient
	waitOnline(t, hub, bob, true)

	require.ElementsMatch(t, []string{alice.String(), bob.String()}, hub.OnlineUserIDs())

	// Bob's registration pushes the updated roster to alice.
	require.Eventually(t, func() bool {
		select {
		case raw := <-aliceClient.Send:
			var frame Frame
			if json.Unmarshal(raw, &frame) != nil || frame.Event != dto.SocketOnlineUsers {
				return false
			}
			ids, ok := frame.Data.([]interface{})
			return ok && len(ids) == 2
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	hub.unregister <- bobClient
	waitOnline(t, hub, bob, false)
	require.ElementsMatch(t, []string{alice.String()}, hub.OnlineUserIDs())
}

func TestDispatch(t *testing.T) {
	sender := uuid.New()
	recipient := uuid.New()
	conversationID := uuid.New()

	frame := func(event string, data interface{}) []byte {
		raw, _ := json.Marshal(map[string]interface{}{"event": event, "data": data})
		return raw
	}

	t.Run("typing routes with the connection identity", func(t *testing.T) {
		router := &fakeRouter{}
		hub := NewHub(nopLogger{})
		hub.SetRouter(router)
		client := newTestClient(hub, sender)

		client.dispatch(frame(dto.SocketInboundTyping, map[string]string{
			"conversationId": conversationID.String(),
			"toUserId":       recipient.String(),
		}))

		calls := router.named("typing")
		require.Len(t, calls, 1)
		require.Equal(t, sender, calls[0].From)
		require.Equal(t, recipient, calls[0].To)
		require.Equal(t, conversationID, calls[0].ConversationID)
	})

	t.Run("markMessagesAsSeen", func(t *testing.T) {
		router := &fakeRouter{}
		hub := NewHub(nopLogger{})
		hub.SetRouter(router)
		client := newTestClient(hub, sender)

		client.dispatch(frame(dto.SocketInboundMarkSeen, map[string]string{
			"conversationId": conversationID.String(),
		}))

		calls := router.named("markSeen")
		require.Len(t, calls, 1)
		require.Equal(t, sender, calls[0].From)
		require.Equal(t, conversationID, calls[0].ConversationID)
	})

	t.Run("stopTyping", func(t *testing.T) {
		router := &fakeRouter{}
		hub := NewHub(nopLogger{})
		hub.SetRouter(router)
		client := newTestClient(hub, sender)

		client.dispatch(frame(dto.SocketInboundStopTyping, map[string]string{
			"conversationId": conversationID.String(),
			"toUserId":       recipient.String(),
		}))
		require.Len(t, router.named("stopTyping"), 1)
	})

	t.Run("unknown and malformed frames are dropped", func(t *testing.T) {
		router := &fakeRouter{}
		hub := NewHub(nopLogger{})
		hub.SetRouter(router)
		client := newTestClient(hub, sender)

		client.dispatch(frame("selfDestruct", map[string]string{}))
		client.dispatch([]byte("{not json"))
		client.dispatch(frame(dto.SocketInboundTyping, "not an object"))

		router.mu.Lock()
		defer router.mu.Unlock()
		require.Empty(t, router.calls)
	})

	t.Run("no router configured", func(t *testing.T) {
		hub := NewHub(nopLogger{})
		client := newTestClient(hub, sender)
		client.dispatch(frame(dto.SocketInboundTyping, map[string]string{}))
	})
}
