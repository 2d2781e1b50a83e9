package dto

import (
	"time"

	"socialite-be/internal/entity"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Content string         `json:"content"`
	Media   []MediaRef     `json:"media"`
}

type MediaRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type ReactionRequest struct {
	Value string `json:"value" validate:"required,max=40"`
}

type GetOrCreateRoomRequest struct {
	RecipientId uuid.UUID `json:"recipientId" validate:"required"`
}

type ReactionResponse struct {
	User      UserProjection `json:"user"`
	Value     string         `json:"value"`
	ReactedAt time.Time      `json:"reactedAt"`
}

type MessageResponse struct {
	Id         uuid.UUID          `json:"id"`
	ChatRoomId uuid.UUID          `json:"chatRoomId"`
	Sender     UserProjection     `json:"sender"`
	Content    string             `json:"content"`
	Media      []MediaRef         `json:"media,omitempty"`
	SentAt     time.Time          `json:"sentAt"`
	Seen       bool               `json:"seen"`
	Reactions  []ReactionResponse `json:"reactions,omitempty"`
}

type LastMessageResponse struct {
	User    uuid.UUID `json:"user"`
	Message string    `json:"message"`
}

type LastSeenResponse struct {
	User   uuid.UUID `json:"user"`
	SeenAt time.Time `json:"seenAt"`
}

type ChatRoomResponse struct {
	ChatRoomId    uuid.UUID            `json:"chatRoomId"`
	Participants  []UserProjection     `json:"participants"`
	LastMessage   *LastMessageResponse `json:"lastMessage,omitempty"`
	LastMessageAt *time.Time           `json:"lastMessageAt,omitempty"`
	LastSeen      []LastSeenResponse   `json:"lastSeen,omitempty"`
}

// ParticipantView is one row of the conversation list: every other user,
// merged with room metadata when a room exists. Null chat fields mean
// "no chat yet".
type ParticipantView struct {
	ChatRoomId    *uuid.UUID           `json:"chatRoomId"`
	Participant   UserProjection       `json:"participant"`
	LastMessage   *LastMessageResponse `json:"lastMessage"`
	LastMessageAt *time.Time           `json:"lastMessageAt"`
	LastSeen      []LastSeenResponse   `json:"lastSeen"`
}

type MarkSeenResponse struct {
	UpdatedChatRooms []uuid.UUID `json:"updatedChatRooms"`
}

// Socket event payloads.

type TypingEvent struct {
	ConversationId uuid.UUID `json:"conversationId"`
	FromUserId     uuid.UUID `json:"fromUserId"`
}

type SeenMessagesEvent struct {
	ConversationId uuid.UUID `json:"conversationId"`
	UserId         uuid.UUID `json:"userId"`
}

type LastSeenUpdateEvent struct {
	UserId uuid.UUID `json:"userId"`
	SeenAt time.Time `json:"seenAt"`
}

func MediaRefsFromEntity(media []entity.MediaRef) []MediaRef {
	if len(media) == 0 {
		return nil
	}
	out := make([]MediaRef, len(media))
	for i, m := range media {
		out[i] = MediaRef{Type: m.Type, URL: m.URL}
	}
	return out
}

func MediaRefsToEntity(media []MediaRef) []entity.MediaRef {
	if len(media) == 0 {
		return nil
	}
	out := make([]entity.MediaRef, len(media))
	for i, m := range media {
		out[i] = entity.MediaRef{Type: m.Type, URL: m.URL}
	}
	return out
}
