package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind is the closed set of notification types.
type NotificationKind string

const (
	NotificationGeneral              NotificationKind = "general"
	NotificationFollow               NotificationKind = "follow"
	NotificationFollowRequest        NotificationKind = "follow_request"
	NotificationFollowAccepted       NotificationKind = "follow_accepted"
	NotificationMessage              NotificationKind = "message"
	NotificationPost                 NotificationKind = "post"
	NotificationRepost               NotificationKind = "repost"
	NotificationMention              NotificationKind = "mention"
	NotificationLike                 NotificationKind = "like"
	NotificationComment              NotificationKind = "comment"
	NotificationCommunityJoinRequest NotificationKind = "communityJoinRequest"
	NotificationCommunityJoined      NotificationKind = "communityJoined"
)

// Notification is produced by social flows and delivered through the same
// presence path as chat messages. FromUser may be nil for system notices.
type Notification struct {
	Id        uuid.UUID
	FromUser  *uuid.UUID
	ToUser    uuid.UUID
	Kind      NotificationKind
	Message   string
	Community *uuid.UUID
	Post      *uuid.UUID
	IsRead    bool
	CreatedAt time.Time
}
