package service

import (
	"context"
	"encoding/json"
	"time"

	"socialite-be/internal/dto"
	"socialite-be/internal/entity"
	"socialite-be/internal/pkg/apperror"
	"socialite-be/internal/pkg/logger"
	"socialite-be/internal/repository/specification"
	"socialite-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatService interface {
	FindOrCreateRoom(ctx context.Context, userID, recipientID uuid.UUID) (*dto.ChatRoomResponse, error)
	SendMessage(ctx context.Context, senderID, recipientID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	ListParticipants(ctx context.Context, userID uuid.UUID) ([]dto.ParticipantView, error)
	ListMessages(ctx context.Context, userID, roomID uuid.UUID) ([]dto.MessageResponse, error)
	MarkAllRoomsSeen(ctx context.Context, userID uuid.UUID) (*dto.MarkSeenResponse, error)

	// MarkMessagesSeen flips unseen messages for the reader and returns the
	// other participant plus how many messages were flipped.
	MarkMessagesSeen(ctx context.Context, userID, roomID uuid.UUID) (uuid.UUID, int, error)

	DeleteRoomForUser(ctx context.Context, userID, roomID uuid.UUID) error
	DeleteMessageForUser(ctx context.Context, userID, roomID, messageID uuid.UUID) error
	ReactToMessage(ctx context.Context, userID, roomID, messageID uuid.UUID, req *dto.ReactionRequest) (*dto.MessageResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	projections      *ProjectionResolver
	delivery         EventDelivery
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	projections *ProjectionResolver,
	delivery EventDelivery,
	publisherService IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		projections:      projections,
		delivery:         delivery,
		publisherService: publisherService,
		logger:           log,
	}
}

// FindOrCreateRoom returns the single room for the unordered pair, creating
// it when absent. Losing the creation race is not an error: the winner's row
// is fetched and returned.
func (s *chatService) FindOrCreateRoom(ctx context.Context, userID, recipientID uuid.UUID) (*dto.ChatRoomResponse, error) {
	if userID == recipientID {
		return nil, apperror.Validation("cannot open a chat with yourself")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Recipient must exist before a room is minted for the pair
	recipient, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: recipientID})
	if err != nil {
		return nil, apperror.Storage("failed to load recipient", err)
	}
	if recipient == nil {
		return nil, apperror.NotFound("user not found")
	}

	room, err := s.getOrCreateRoom(ctx, uow, userID, recipientID)
	if err != nil {
		return nil, err
	}

	return s.toChatRoomResponse(ctx, room, userID)
}

func (s *chatService) getOrCreateRoom(ctx context.Context, uow unitofwork.UnitOfWork, a, b uuid.UUID) (*entity.ChatRoom, error) {
	pairKey := entity.PairKey(a, b)

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByPairKey{Key: pairKey})
	if err != nil {
		return nil, apperror.Storage("failed to look up chat room", err)
	}
	if room != nil {
		return room, nil
	}

	room = entity.NewChatRoom(a, b)
	inserted, err := uow.ChatRoomRepository().CreateIfAbsent(ctx, room)
	if err != nil {
		return nil, apperror.Storage("failed to create chat room", err)
	}
	if inserted {
		return room, nil
	}

	// Lost the race against the other participant's first contact.
	room, err = uow.ChatRoomRepository().FindOne(ctx, specification.ByPairKey{Key: pairKey})
	if err != nil || room == nil {
		return nil, apperror.Storage("failed to load chat room after conflict", err)
	}
	return room, nil
}

func (s *chatService) SendMessage(ctx context.Context, senderID, recipientID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if senderID == recipientID {
		return nil, apperror.Validation("cannot message yourself")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	recipient, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: recipientID})
	if err != nil {
		return nil, apperror.Storage("failed to load recipient", err)
	}
	if recipient == nil {
		return nil, apperror.NotFound("user not found")
	}

	msg := entity.Message{
		Id:      uuid.New(),
		Sender:  senderID,
		Content: req.Content,
		Media:   dto.MediaRefsToEntity(req.Media),
		SentAt:  time.Now(),
	}

	// 1. Append under a row lock so concurrent sends into the same room
	// serialize and the log keeps append order.
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Storage("failed to start transaction", err)
	}
	defer uow.Rollback()

	pairKey := entity.PairKey(senderID, recipientID)
	room, err := uow.ChatRoomRepository().FindOneLocked(ctx, specification.ByPairKey{Key: pairKey})
	if err != nil {
		return nil, apperror.Storage("failed to lock chat room", err)
	}
	if room == nil {
		room = entity.NewChatRoom(senderID, recipientID)
		inserted, err := uow.ChatRoomRepository().CreateIfAbsent(ctx, room)
		if err != nil {
			return nil, apperror.Storage("failed to create chat room", err)
		}
		if !inserted {
			room, err = uow.ChatRoomRepository().FindOneLocked(ctx, specification.ByPairKey{Key: pairKey})
			if err != nil || room == nil {
				return nil, apperror.Storage("failed to lock chat room after conflict", err)
			}
		}
	}

	room.Append(msg)
	room.UpdatedAt = time.Now()

	if err := uow.ChatRoomRepository().Save(ctx, room); err != nil {
		return nil, apperror.Storage("failed to save message", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Storage("failed to commit message", err)
	}

	response, err := s.toMessageResponse(ctx, room.Id, &msg)
	if err != nil {
		return nil, err
	}

	// 2. Push to the recipient if reachable. Unreachable is a normal branch.
	if s.delivery != nil {
		s.delivery.SendToUser(recipientID, dto.SocketSendMessage, response)
		s.delivery.SendToUser(recipientID, dto.SocketUpdateLastMessage, response)
	}

	// 3. Announce on the pipeline regardless of reachability. Auxiliary:
	// the message is already durable, so a publish failure is only logged.
	if s.publisherService != nil {
		evt := dto.MessageSentEvent{
			ChatRoomId:  room.Id,
			MessageId:   msg.Id,
			SenderId:    senderID,
			RecipientId: recipientID,
			Summary:     room.LastMessage.Message,
			SentAt:      msg.SentAt,
		}
		payload, _ := json.Marshal(evt)
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.logger.Warn("ChatService", "Failed to publish message_sent", map[string]interface{}{"error": err.Error()})
		}
	}

	return response, nil
}

// ListParticipants returns the conversation list: every room of the caller
// that is not soft-deleted, merged with all remaining users as "no chat yet"
// rows.
func (s *chatService) ListParticipants(ctx context.Context, userID uuid.UUID) ([]dto.ParticipantView, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatRoomRepository().FindAll(ctx,
		specification.HasParticipant{UserID: userID},
		specification.NotDeletedFor{UserID: userID},
		specification.OrderBy{Field: "last_message_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Storage("failed to load chat rooms", err)
	}

	views := make([]dto.ParticipantView, 0, len(rooms))
	inChats := make(map[uuid.UUID]bool, len(rooms))

	for _, room := range rooms {
		otherID, ok := room.OtherParticipant(userID)
		if !ok {
			continue
		}
		other, err := s.projections.Resolve(ctx, otherID)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		inChats[otherID] = true

		roomID := room.Id
		views = append(views, dto.ParticipantView{
			ChatRoomId:    &roomID,
			Participant:   other,
			LastMessage:   toLastMessageResponse(room.LastMessage),
			LastMessageAt: room.LastMessageAt,
			LastSeen:      toLastSeenResponses(room.LastSeen),
		})
	}

	// Users without a room yet still show up, with null chat fields.
	others, err := uow.UserRepository().FindAll(ctx, specification.NotID{ID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to load users", err)
	}
	for _, u := range others {
		if inChats[u.Id] {
			continue
		}
		p := u.Projection()
		views = append(views, dto.ParticipantView{
			Participant: dto.UserProjection{Id: p.Id, Username: p.Username, ProfilePic: p.ProfilePic},
		})
	}

	return views, nil
}

func (s *chatService) ListMessages(ctx context.Context, userID, roomID uuid.UUID) ([]dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomID})
	if err != nil {
		return nil, apperror.Storage("failed to load chat room", err)
	}
	if room == nil {
		return nil, apperror.NotFound("chat not found")
	}
	if !room.HasParticipant(userID) {
		return nil, apperror.Forbidden("not a participant of this chat")
	}
	if room.IsDeletedFor(userID) {
		return nil, apperror.Forbidden("chat deleted for you")
	}

	visible := room.VisibleMessagesFor(userID)
	responses := make([]dto.MessageResponse, 0, len(visible))
	for i := range visible {
		r, err := s.toMessageResponse(ctx, room.Id, &visible[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *r)
	}
	return responses, nil
}

// MarkAllRoomsSeen stamps lastSeen in every room of the user, the bulk
// "catch up" the client fires when the chat screen gains focus.
func (s *chatService) MarkAllRoomsSeen(ctx context.Context, userID uuid.UUID) (*dto.MarkSeenResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatRoomRepository().FindAll(ctx, specification.HasParticipant{UserID: userID})
	if err != nil {
		return nil, apperror.Storage("failed to load chat rooms", err)
	}
	if len(rooms) == 0 {
		return nil, apperror.NotFound("no chat rooms found for user")
	}

	now := time.Now()
	updated := make([]uuid.UUID, 0, len(rooms))
	for _, room := range rooms {
		room.UpsertLastSeen(userID, now)
		if err := uow.ChatRoomRepository().Save(ctx, room); err != nil {
			return nil, apperror.Storage("failed to update last seen", err)
		}
		updated = append(updated, room.Id)
	}

	return &dto.MarkSeenResponse{UpdatedChatRooms: updated}, nil
}

func (s *chatService) MarkMessagesSeen(ctx context.Context, userID, roomID uuid.UUID) (uuid.UUID, int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, 0, apperror.Storage("failed to start transaction", err)
	}
	defer uow.Rollback()

	room, err := uow.ChatRoomRepository().FindOneLocked(ctx, specification.ByID{ID: roomID})
	if err != nil {
		return uuid.Nil, 0, apperror.Storage("failed to lock chat room", err)
	}
	if room == nil {
		return uuid.Nil, 0, apperror.NotFound("chat not found")
	}
	if !room.HasParticipant(userID) {
		return uuid.Nil, 0, apperror.Forbidden("not a participant of this chat")
	}

	flipped := room.MarkMessagesSeenBy(userID)
	if flipped > 0 {
		if err := uow.ChatRoomRepository().Save(ctx, room); err != nil {
			return uuid.Nil, 0, apperror.Storage("failed to save seen flags", err)
		}
	}
	if err := uow.Commit(); err != nil {
		return uuid.Nil, 0, apperror.Storage("failed to commit seen flags", err)
	}

	otherID, _ := room.OtherParticipant(userID)
	return otherID, flipped, nil
}

func (s *chatService) DeleteRoomForUser(ctx context.Context, userID, roomID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatRoomRepository().FindOne(ctx, specification.ByID{ID: roomID})
	if err != nil {
		return apperror.Storage("failed to load chat room", err)
	}
	if room == nil {
		return apperror.NotFound("chat not found")
	}
	if !room.HasParticipant(userID) {
		return apperror.Forbidden("not a participant of this chat")
	}

	room.DeleteFor(userID)
	if err := uow.ChatRoomRepository().Save(ctx, room); err != nil {
		return apperror.Storage("failed to delete chat", err)
	}
	return nil
}

func (s *chatService) DeleteMessageForUser(ctx context.Context, userID, roomID, messageID uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return apperror.Storage("failed to start transaction", err)
	}
	defer uow.Rollback()

	room, err := uow.ChatRoomRepository().FindOneLocked(ctx, specification.ByID{ID: roomID})
	if err != nil {
		return apperror.Storage("failed to lock chat room", err)
	}
	if room == nil {
		return apperror.NotFound("chat not found")
	}
	if !room.HasParticipant(userID) {
		return apperror.Forbidden("not a participant of this chat")
	}

	msg := room.FindMessage(messageID)
	if msg == nil {
		return apperror.NotFound("message not found")
	}

	msg.DeleteFor(userID)
	if err := uow.ChatRoomRepository().Save(ctx, room); err != nil {
		return apperror.Storage("failed to delete message", err)
	}
	return uow.Commit()
}

func (s *chatService) ReactToMessage(ctx context.Context, userID, roomID, messageID uuid.UUID, req *dto.ReactionRequest) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Storage("failed to start transaction", err)
	}
	defer uow.Rollback()

	room, err := uow.ChatRoomRepository().FindOneLocked(ctx, specification.ByID{ID: roomID})
	if err != nil {
		return nil, apperror.Storage("failed to lock chat room", err)
	}
	if room == nil {
		return nil, apperror.NotFound("chat not found")
	}
	if !room.HasParticipant(userID) {
		return nil, apperror.Forbidden("not a participant of this chat")
	}

	msg := room.FindMessage(messageID)
	if msg == nil {
		return nil, apperror.NotFound("message not found")
	}

	msg.React(userID, req.Value, time.Now())
	if err := uow.ChatRoomRepository().Save(ctx, room); err != nil {
		return nil, apperror.Storage("failed to save reaction", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Storage("failed to commit reaction", err)
	}

	response, err := s.toMessageResponse(ctx, room.Id, msg)
	if err != nil {
		return nil, err
	}

	// Let the counterpart see the reaction land live.
	if s.delivery != nil {
		if otherID, ok := room.OtherParticipant(userID); ok {
			s.delivery.SendToUser(otherID, dto.SocketSendMessage, response)
		}
	}

	return response, nil
}

func (s *chatService) toChatRoomResponse(ctx context.Context, room *entity.ChatRoom, viewerID uuid.UUID) (*dto.ChatRoomResponse, error) {
	// The viewer is excluded: clients only need the counterpart to render.
	counterparts := make([]uuid.UUID, 0, 1)
	for _, p := range room.Participants {
		if p != viewerID {
			counterparts = append(counterparts, p)
		}
	}

	participants, err := s.projections.ResolveMany(ctx, counterparts)
	if err != nil {
		return nil, err
	}

	return &dto.ChatRoomResponse{
		ChatRoomId:    room.Id,
		Participants:  participants,
		LastMessage:   toLastMessageResponse(room.LastMessage),
		LastMessageAt: room.LastMessageAt,
		LastSeen:      toLastSeenResponses(room.LastSeen),
	}, nil
}

func (s *chatService) toMessageResponse(ctx context.Context, roomID uuid.UUID, msg *entity.Message) (*dto.MessageResponse, error) {
	sender, err := s.projections.Resolve(ctx, msg.Sender)
	if err != nil {
		return nil, err
	}

	var reactions []dto.ReactionResponse
	for _, r := range msg.Reactions {
		user, err := s.projections.Resolve(ctx, r.User)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		reactions = append(reactions, dto.ReactionResponse{User: user, Value: r.Value, ReactedAt: r.ReactedAt})
	}

	return &dto.MessageResponse{
		Id:         msg.Id,
		ChatRoomId: roomID,
		Sender:     sender,
		Content:    msg.Content,
		Media:      dto.MediaRefsFromEntity(msg.Media),
		SentAt:     msg.SentAt,
		Seen:       msg.Seen,
		Reactions:  reactions,
	}, nil
}

func toLastMessageResponse(lm *entity.LastMessage) *dto.LastMessageResponse {
	if lm == nil {
		return nil
	}
	return &dto.LastMessageResponse{User: lm.User, Message: lm.Message}
}

func toLastSeenResponses(entries []entity.LastSeenEntry) []dto.LastSeenResponse {
	if len(entries) == 0 {
		return nil
	}
	out := make([]dto.LastSeenResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.LastSeenResponse{User: e.User, SeenAt: e.SeenAt}
	}
	return out
}
