package mapper

import (
	"encoding/json"
	"fmt"

	"socialite-be/internal/entity"
	"socialite-be/internal/model"

	"gorm.io/datatypes"
)

// ChatMapper converts between the ChatRoom entity and its JSONB-embedded
// persistence row. Unmarshal failures surface as errors: a room whose log
// cannot be decoded must not silently read as empty.
type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(r *model.ChatRoom) (*entity.ChatRoom, error) {
	if r == nil {
		return nil, nil
	}

	room := &entity.ChatRoom{
		Id:            r.Id,
		Participants:  r.Participants,
		DeletedFor:    r.DeletedFor,
		LastMessageAt: r.LastMessageAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Messages:      []entity.Message{},
		LastSeen:      []entity.LastSeenEntry{},
	}

	if len(r.Messages) > 0 {
		if err := json.Unmarshal(r.Messages, &room.Messages); err != nil {
			return nil, fmt.Errorf("decode messages for room %s: %w", r.Id, err)
		}
	}
	if len(r.LastSeen) > 0 {
		if err := json.Unmarshal(r.LastSeen, &room.LastSeen); err != nil {
			return nil, fmt.Errorf("decode lastSeen for room %s: %w", r.Id, err)
		}
	}
	if len(r.LastMessage) > 0 {
		var last entity.LastMessage
		if err := json.Unmarshal(r.LastMessage, &last); err != nil {
			return nil, fmt.Errorf("decode lastMessage for room %s: %w", r.Id, err)
		}
		room.LastMessage = &last
	}

	return room, nil
}

func (m *ChatMapper) ToModel(r *entity.ChatRoom) (*model.ChatRoom, error) {
	if r == nil {
		return nil, nil
	}

	messages, err := json.Marshal(r.Messages)
	if err != nil {
		return nil, fmt.Errorf("encode messages for room %s: %w", r.Id, err)
	}
	lastSeen, err := json.Marshal(r.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("encode lastSeen for room %s: %w", r.Id, err)
	}

	row := &model.ChatRoom{
		Id:            r.Id,
		PairKey:       r.PairKey(),
		Participants:  datatypes.NewJSONSlice(r.Participants),
		Messages:      datatypes.JSON(messages),
		DeletedFor:    datatypes.NewJSONSlice(r.DeletedFor),
		LastMessageAt: r.LastMessageAt,
		LastSeen:      datatypes.JSON(lastSeen),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	if r.LastMessage != nil {
		lastMessage, err := json.Marshal(r.LastMessage)
		if err != nil {
			return nil, fmt.Errorf("encode lastMessage for room %s: %w", r.Id, err)
		}
		row.LastMessage = datatypes.JSON(lastMessage)
	}

	return row, nil
}
