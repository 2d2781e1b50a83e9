package events

import (
	"time"

	"github.com/google/uuid"
)

// Social event type codes. The notification worker resolves these to
// notification kinds and message templates.
const (
	TypeUserRegistered = "USER_REGISTERED"
	TypeFollow         = "FOLLOW"
	TypeFollowRequest  = "FOLLOW_REQUEST"
	TypeFollowAccepted = "FOLLOW_ACCEPTED"
)

// SocialEvent is a follow-graph event targeting a single user.
type SocialEvent struct {
	Type         string
	FromUserID   uuid.UUID
	FromUsername string
	ToUserID     uuid.UUID
	OccurredAt   time.Time
}

func (e SocialEvent) EventType() string {
	return e.Type
}

func (e SocialEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"from_user_id":  e.FromUserID.String(),
		"from_username": e.FromUsername,
		"to_user_id":    e.ToUserID.String(),
		"occurred_at":   e.OccurredAt.Format(time.RFC3339),
	}
}

func (e SocialEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewFollowEvent(fromID uuid.UUID, fromUsername string, toID uuid.UUID) SocialEvent {
	return SocialEvent{Type: TypeFollow, FromUserID: fromID, FromUsername: fromUsername, ToUserID: toID, OccurredAt: time.Now()}
}

func NewFollowRequestEvent(fromID uuid.UUID, fromUsername string, toID uuid.UUID) SocialEvent {
	return SocialEvent{Type: TypeFollowRequest, FromUserID: fromID, FromUsername: fromUsername, ToUserID: toID, OccurredAt: time.Now()}
}

func NewFollowAcceptedEvent(fromID uuid.UUID, fromUsername string, toID uuid.UUID) SocialEvent {
	return SocialEvent{Type: TypeFollowAccepted, FromUserID: fromID, FromUsername: fromUsername, ToUserID: toID, OccurredAt: time.Now()}
}

func NewUserRegisteredEvent(userID uuid.UUID, username string) SocialEvent {
	return SocialEvent{Type: TypeUserRegistered, FromUserID: userID, FromUsername: username, ToUserID: userID, OccurredAt: time.Now()}
}
