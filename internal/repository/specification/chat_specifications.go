package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByPairKey finds the unique room for an unordered participant pair.
type ByPairKey struct {
	Key string
}

func (s ByPairKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pair_key = ?", s.Key)
}

// HasParticipant matches rooms whose participants JSONB array contains the user.
type HasParticipant struct {
	UserID uuid.UUID
}

func (s HasParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("participants @> ?", fmt.Sprintf(`["%s"]`, s.UserID))
}

// NotDeletedFor excludes rooms soft-deleted for the user.
type NotDeletedFor struct {
	UserID uuid.UUID
}

func (s NotDeletedFor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("NOT (deleted_for @> ?)", fmt.Sprintf(`["%s"]`, s.UserID))
}

// Notification specs.

type ForRecipient struct {
	UserID uuid.UUID
}

func (s ForRecipient) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("to_user_id = ?", s.UserID)
}

type Unread struct{}

func (s Unread) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = false")
}
