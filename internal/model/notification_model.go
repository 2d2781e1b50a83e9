package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FromUserId  *uuid.UUID `gorm:"type:uuid;index"`
	ToUserId    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_to_created,priority:1;index:idx_notifications_to_unread,priority:1"`
	Kind        string     `gorm:"type:varchar(40);not null;default:'general'"`
	Message     string     `gorm:"type:text;not null"`
	CommunityId *uuid.UUID `gorm:"type:uuid"`
	PostId      *uuid.UUID `gorm:"type:uuid"`
	IsRead      bool       `gorm:"default:false;index:idx_notifications_to_unread,priority:2"`
	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP;index:idx_notifications_to_created,priority:2"`
}
