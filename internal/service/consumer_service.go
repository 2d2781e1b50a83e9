package service

import (
	"context"
	"encoding/json"
	"time"

	"socialite-be/internal/dto"
	"socialite-be/internal/entity"
	"socialite-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the message-activity pipeline. For every sent
// message whose recipient is offline it records an unread notification, so
// the recipient finds out on their next login.
type consumerService struct {
	pubSub              *gochannel.GoChannel
	topicName           string
	notificationService INotificationService
	delivery            EventDelivery
	logger              logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	notificationService INotificationService,
	delivery EventDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:              pubSub,
		topicName:           topicName,
		notificationService: notificationService,
		delivery:            delivery,
		logger:              log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var evt dto.MessageSentEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal pipeline message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed payloads never become valid, don't retry
		return
	}

	// Online recipients already got the live sendMessage push.
	if cs.delivery != nil && cs.delivery.IsOnline(evt.RecipientId) {
		msg.Ack()
		return
	}

	senderID := evt.SenderId
	notification := &entity.Notification{
		Id:        uuid.New(),
		FromUser:  &senderID,
		ToUser:    evt.RecipientId,
		Kind:      entity.NotificationMessage,
		Message:   "You have a new message.",
		CreatedAt: time.Now(),
	}

	if err := cs.notificationService.Notify(ctx, notification); err != nil {
		cs.logger.Error("ConsumerService", "Failed to record message notification", map[string]interface{}{
			"recipient_id": evt.RecipientId,
			"error":        err.Error(),
		})
		msg.Nack() // storage hiccups are retriable
		return
	}

	msg.Ack()
}
