package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	Id        uuid.UUID       `json:"id"`
	FromUser  *UserProjection `json:"fromUser,omitempty"`
	Kind      string          `json:"type"`
	Message   string          `json:"message"`
	Community *uuid.UUID      `json:"community,omitempty"`
	Post      *uuid.UUID      `json:"post,omitempty"`
	IsRead    bool            `json:"isRead"`
	CreatedAt time.Time       `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
