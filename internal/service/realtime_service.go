package service

import (
	"context"
	"time"

	"socialite-be/internal/dto"
	"socialite-be/internal/pkg/logger"
	"socialite-be/internal/repository/specification"
	"socialite-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IRealtimeService relays ephemeral socket events between participants. It
// satisfies the hub's EventRouter interface; the hub calls in with the
// authenticated sender, never a client-claimed identity.
type IRealtimeService interface {
	OnTyping(fromUserID, toUserID, conversationID uuid.UUID)
	OnStopTyping(fromUserID, toUserID, conversationID uuid.UUID)
	OnMarkSeen(userID, conversationID uuid.UUID)
	OnDisconnect(userID uuid.UUID)
}

type realtimeService struct {
	uowFactory  unitofwork.RepositoryFactory
	chatService IChatService
	delivery    EventDelivery
	logger      logger.ILogger
}

func NewRealtimeService(
	uowFactory unitofwork.RepositoryFactory,
	chatService IChatService,
	delivery EventDelivery,
	log logger.ILogger,
) IRealtimeService {
	return &realtimeService{
		uowFactory:  uowFactory,
		chatService: chatService,
		delivery:    delivery,
		logger:      log,
	}
}

// OnTyping forwards the indicator to the recipient only. Nothing is stored;
// an offline recipient simply misses it.
func (s *realtimeService) OnTyping(fromUserID, toUserID, conversationID uuid.UUID) {
	s.delivery.SendToUser(toUserID, dto.SocketStartTyping, dto.TypingEvent{
		ConversationId: conversationID,
		FromUserId:     fromUserID,
	})
}

func (s *realtimeService) OnStopTyping(fromUserID, toUserID, conversationID uuid.UUID) {
	s.delivery.SendToUser(toUserID, dto.SocketStopTyping, dto.TypingEvent{
		ConversationId: conversationID,
		FromUserId:     fromUserID,
	})
}

// OnMarkSeen persists the seen flags, then tells the counterpart their
// messages were read.
func (s *realtimeService) OnMarkSeen(userID, conversationID uuid.UUID) {
	ctx := context.Background()

	otherID, _, err := s.chatService.MarkMessagesSeen(ctx, userID, conversationID)
	if err != nil {
		s.logger.Warn("RealtimeService", "markMessagesAsSeen failed", map[string]interface{}{
			"user_id":         userID,
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return
	}

	if otherID != uuid.Nil {
		s.delivery.SendToUser(otherID, dto.SocketSeenMessages, dto.SeenMessagesEvent{
			ConversationId: conversationID,
			UserId:         userID,
		})
	}
}

// OnDisconnect stamps lastSeen in every room of the user and pushes the
// update to each reachable counterpart. One broken room must not stop the
// rest of the fan-out.
func (s *realtimeService) OnDisconnect(userID uuid.UUID) {
	ctx := context.Background()
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatRoomRepository().FindAll(ctx, specification.HasParticipant{UserID: userID})
	if err != nil {
		s.logger.Error("RealtimeService", "Failed to load rooms on disconnect", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	now := time.Now()
	for _, room := range rooms {
		room.UpsertLastSeen(userID, now)
		if err := uow.ChatRoomRepository().Save(ctx, room); err != nil {
			s.logger.Warn("RealtimeService", "Failed to stamp lastSeen", map[string]interface{}{
				"user_id": userID,
				"room_id": room.Id,
				"error":   err.Error(),
			})
			continue
		}

		if otherID, ok := room.OtherParticipant(userID); ok {
			s.delivery.SendToUser(otherID, dto.SocketLastSeenUpdate, dto.LastSeenUpdateEvent{
				UserId: userID,
				SeenAt: now,
			})
		}
	}
}
