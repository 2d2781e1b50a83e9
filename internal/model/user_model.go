package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName     string    `gorm:"type:varchar(100);not null"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	ProfilePic   string    `gorm:"type:text;default:''"`
	Bio          string    `gorm:"type:text;default:''"`
	Role         string    `gorm:"type:varchar(20);default:'user'"`
	IsPrivate    bool      `gorm:"default:false"`
	Location     string    `gorm:"type:varchar(120)"`
	CoverPhoto   string    `gorm:"type:text"`
	Website      string    `gorm:"type:varchar(255)"`
	PhoneNumber  string    `gorm:"type:varchar(40)"`

	Interests datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	// Follow graph kept embedded, mirroring the document layout.
	Followers      datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb"`
	Following      datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb"`
	FollowRequests datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}
