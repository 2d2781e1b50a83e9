package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"socialite-be/internal/dto"
	"socialite-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures Notify calls so consumer tests can assert on
// what the pipeline worker records.
type recordingNotifier struct {
	notified  []*entity.Notification
	notifyErr error
}

func (r *recordingNotifier) Start() error { return nil }

func (r *recordingNotifier) Notify(_ context.Context, n *entity.Notification) error {
	if r.notifyErr != nil {
		return r.notifyErr
	}
	r.notified = append(r.notified, n)
	return nil
}

func (r *recordingNotifier) List(context.Context, uuid.UUID, int, int) (*dto.NotificationListResponse, error) {
	return nil, nil
}

func (r *recordingNotifier) UnreadCount(context.Context, uuid.UUID) (*dto.UnreadCountResponse, error) {
	return nil, nil
}

func (r *recordingNotifier) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (r *recordingNotifier) MarkAllAsRead(context.Context, uuid.UUID) error         { return nil }

func pipelineMessage(t *testing.T, evt dto.MessageSentEvent) *message.Message {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func requireAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	case <-time.After(time.Second):
		t.Fatal("message was not acked")
	}
}

func requireNacked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Nacked():
	case <-time.After(time.Second):
		t.Fatal("message was not nacked")
	}
}

func TestProcessMessage(t *testing.T) {
	ctx := context.Background()
	sender := uuid.New()
	recipient := uuid.New()

	evt := dto.MessageSentEvent{
		ChatRoomId:  uuid.New(),
		MessageId:   uuid.New(),
		SenderId:    sender,
		RecipientId: recipient,
		Summary:     "hello",
		SentAt:      time.Now(),
	}

	t.Run("offline recipient gets a notification", func(t *testing.T) {
		notifier := &recordingNotifier{}
		cs := NewConsumerService(nil, "chat.message_sent", notifier, newFakeDelivery(), nopLogger{}).(*consumerService)

		msg := pipelineMessage(t, evt)
		cs.processMessage(ctx, msg)

		requireAcked(t, msg)
		require.Len(t, notifier.notified, 1)
		require.Equal(t, recipient, notifier.notified[0].ToUser)
		require.Equal(t, entity.NotificationMessage, notifier.notified[0].Kind)
		require.Equal(t, "You have a new message.", notifier.notified[0].Message)
	})

	t.Run("online recipient is skipped", func(t *testing.T) {
		notifier := &recordingNotifier{}
		cs := NewConsumerService(nil, "chat.message_sent", notifier, newFakeDelivery(recipient), nopLogger{}).(*consumerService)

		msg := pipelineMessage(t, evt)
		cs.processMessage(ctx, msg)

		requireAcked(t, msg)
		require.Empty(t, notifier.notified)
	})

	t.Run("malformed payload is acked, not retried", func(t *testing.T) {
		notifier := &recordingNotifier{}
		cs := NewConsumerService(nil, "chat.message_sent", notifier, newFakeDelivery(), nopLogger{}).(*consumerService)

		msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
		cs.processMessage(ctx, msg)

		requireAcked(t, msg)
		require.Empty(t, notifier.notified)
	})

	t.Run("storage failure is nacked for retry", func(t *testing.T) {
		notifier := &recordingNotifier{notifyErr: errors.New("db down")}
		cs := NewConsumerService(nil, "chat.message_sent", notifier, newFakeDelivery(), nopLogger{}).(*consumerService)

		msg := pipelineMessage(t, evt)
		cs.processMessage(ctx, msg)

		requireNacked(t, msg)
	})
}
