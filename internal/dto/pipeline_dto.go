package dto

import (
	"time"

	"github.com/google/uuid"
)

// MessageSentEvent rides the in-process pipeline after a message has been
// durably appended. Consumers must tolerate the recipient being online,
// offline, or deleted by the time they run.
type MessageSentEvent struct {
	ChatRoomId  uuid.UUID `json:"chatRoomId"`
	MessageId   uuid.UUID `json:"messageId"`
	SenderId    uuid.UUID `json:"senderId"`
	RecipientId uuid.UUID `json:"recipientId"`
	Summary     string    `json:"summary"`
	SentAt      time.Time `json:"sentAt"`
}
