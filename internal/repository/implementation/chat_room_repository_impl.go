package implementation

import (
	"context"
	"errors"

	"socialite-be/internal/entity"
	"socialite-be/internal/mapper"
	"socialite-be/internal/model"
	"socialite-be/internal/repository/contract"
	"socialite-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRoomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRoomRepository(db *gorm.DB) contract.ChatRoomRepository {
	return &ChatRoomRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRoomRepositoryImpl) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (bool, error) {
	m, err := r.mapper.ToModel(room)
	if err != nil {
		return false, err
	}

	// The unique pair_key index arbitrates concurrent first-contact from
	// both sides; the loser re-fetches instead of erroring.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "pair_key"}}, DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ChatRoomRepositoryImpl) Save(ctx context.Context, room *entity.ChatRoom) error {
	m, err := r.mapper.ToModel(room)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *ChatRoomRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	return r.findOne(r.db.WithContext(ctx), specs...)
}

func (r *ChatRoomRepositoryImpl) FindOneLocked(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	locked := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findOne(locked, specs...)
}

func (r *ChatRoomRepositoryImpl) findOne(db *gorm.DB, specs ...specification.Specification) (*entity.ChatRoom, error) {
	var m model.ChatRoom
	query := applySpecifications(db, specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ChatRoomRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error) {
	var models []*model.ChatRoom
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	rooms := make([]*entity.ChatRoom, 0, len(models))
	for _, m := range models {
		room, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
