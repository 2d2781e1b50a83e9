package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatRoom persists one conversation per participant pair as a single row
// with the message log embedded as JSONB. The unique pair_key index is what
// guarantees at most one room per unordered pair under concurrent creation.
type ChatRoom struct {
	Id      uuid.UUID `gorm:"type:uuid;primaryKey"`
	PairKey string    `gorm:"type:varchar(80);uniqueIndex;not null"`

	Participants datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb;not null"`
	Messages     datatypes.JSON                 `gorm:"type:jsonb;not null;default:'[]'"`
	DeletedFor   datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb;not null;default:'[]'"`
	LastMessage  datatypes.JSON                 `gorm:"type:jsonb"`
	LastSeen     datatypes.JSON                 `gorm:"type:jsonb;not null;default:'[]'"`

	LastMessageAt *time.Time
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
