package contract

import (
	"context"

	"socialite-be/internal/entity"
	"socialite-be/internal/repository/specification"
)

type ChatRoomRepository interface {
	// CreateIfAbsent inserts the room unless one already exists for its pair
	// key. Returns true when the insert won the race; false means the caller
	// should re-fetch the existing room.
	CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (bool, error)

	// Save writes the full room document back.
	Save(ctx context.Context, room *entity.ChatRoom) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error)

	// FindOneLocked is FindOne with a row lock; only meaningful inside a
	// transaction. The store's per-room append ordering hangs on this.
	FindOneLocked(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error)

	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error)
}
