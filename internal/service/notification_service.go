package service

import (
	"context"
	"fmt"
	"time"

	"socialite-be/internal/dto"
	"socialite-be/internal/entity"
	"socialite-be/internal/pkg/apperror"
	"socialite-be/internal/pkg/logger"
	"socialite-be/internal/repository/specification"
	"socialite-be/internal/repository/unitofwork"

	"socialite-be/pkg/events"
	pktNats "socialite-be/pkg/nats"

	"github.com/google/uuid"
)

type INotificationService interface {
	// Start subscribes to the social event stream. Call once at boot.
	Start() error

	// Notify persists a notification and pushes it to the target if online.
	Notify(ctx context.Context, notification *entity.Notification) error

	List(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	uowFactory  unitofwork.RepositoryFactory
	subscriber  *pktNats.Subscriber
	projections *ProjectionResolver
	delivery    EventDelivery
	logger      logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	subscriber *pktNats.Subscriber,
	projections *ProjectionResolver,
	delivery EventDelivery,
	log logger.ILogger,
) INotificationService {
	return &notificationService{
		uowFactory:  uowFactory,
		subscriber:  subscriber,
		projections: projections,
		delivery:    delivery,
		logger:      log,
	}
}

func (s *notificationService) Start() error {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "No event subscriber configured, social notifications disabled", nil)
		return nil
	}
	if err := s.subscriber.Subscribe("events.>", "notification-worker", s.handleEvent); err != nil {
		return fmt.Errorf("failed to start notification subscriber: %w", err)
	}
	s.logger.Info("NotificationService", "Listening on events.>", nil)
	return nil
}

func (s *notificationService) handleEvent(ctx context.Context, event events.Event) error {
	kind, template, ok := kindForEvent(event.EventType())
	if !ok {
		// Unknown event types are acked and skipped, not retried forever.
		return nil
	}

	payload := event.Payload()
	fromID, err := parseUUIDField(payload, "from_user_id")
	if err != nil {
		s.logger.Warn("NotificationService", "Event missing from_user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	toID, err := parseUUIDField(payload, "to_user_id")
	if err != nil {
		s.logger.Warn("NotificationService", "Event missing to_user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}
	username, _ := payload["from_username"].(string)

	notification := &entity.Notification{
		Id:        uuid.New(),
		FromUser:  &fromID,
		ToUser:    toID,
		Kind:      kind,
		Message:   fmt.Sprintf(template, username),
		CreatedAt: time.Now(),
	}

	return s.Notify(ctx, notification)
}

// kindForEvent maps social event codes onto notification kinds and their
// message templates.
func kindForEvent(eventType string) (entity.NotificationKind, string, bool) {
	switch eventType {
	case events.TypeFollow:
		return entity.NotificationFollow, "%s has started following you.", true
	case events.TypeFollowRequest:
		return entity.NotificationFollowRequest, "%s has requested to follow you.", true
	case events.TypeFollowAccepted:
		return entity.NotificationFollowAccepted, "%s accepted your follow request.", true
	default:
		return "", "", false
	}
}

func parseUUIDField(payload map[string]interface{}, key string) (uuid.UUID, error) {
	raw, _ := payload[key].(string)
	return uuid.Parse(raw)
}

func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
		return apperror.Storage("failed to save notification", err)
	}

	// Delivery is best effort; the row is durable either way.
	if s.delivery != nil {
		response, err := s.toResponse(ctx, notification)
		if err != nil {
			s.logger.Warn("NotificationService", "Failed to build notification payload", map[string]interface{}{
				"notification_id": notification.Id,
				"error":           err.Error(),
			})
			return nil
		}
		s.delivery.SendToUser(notification.ToUser, dto.SocketNotification, response)
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.NotificationListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.NotificationRepository().Count(ctx, specification.ForRecipient{UserID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to count notifications", err)
	}

	notifications, err := uow.NotificationRepository().FindAll(ctx,
		specification.ForRecipient{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, apperror.Storage("failed to load notifications", err)
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		r, err := s.toResponse(ctx, n)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *r)
	}

	return &dto.NotificationListResponse{Notifications: responses, Total: total}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	count, err := uow.NotificationRepository().Count(ctx,
		specification.ForRecipient{UserID: userID},
		specification.Unread{},
	)
	if err != nil {
		return nil, apperror.Storage("failed to count unread notifications", err)
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notifications, err := uow.NotificationRepository().FindAll(ctx,
		specification.ByID{ID: notificationID},
		specification.ForRecipient{UserID: userID},
	)
	if err != nil {
		return apperror.Storage("failed to load notification", err)
	}
	if len(notifications) == 0 {
		return apperror.NotFound("notification not found")
	}

	if err := uow.NotificationRepository().MarkAsRead(ctx, notificationID); err != nil {
		return apperror.Storage("failed to mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().MarkAllAsRead(ctx, userID); err != nil {
		return apperror.Storage("failed to mark notifications read", err)
	}
	return nil
}

func (s *notificationService) toResponse(ctx context.Context, n *entity.Notification) (*dto.NotificationResponse, error) {
	resp := &dto.NotificationResponse{
		Id:        n.Id,
		Kind:      string(n.Kind),
		Message:   n.Message,
		Community: n.Community,
		Post:      n.Post,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}

	if n.FromUser != nil {
		from, err := s.projections.Resolve(ctx, *n.FromUser)
		if err == nil {
			resp.FromUser = &from
		} else if !apperror.IsNotFound(err) {
			return nil, err
		}
	}
	return resp, nil
}
