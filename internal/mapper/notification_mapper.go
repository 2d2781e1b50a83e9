package mapper

import (
	"socialite-be/internal/entity"
	"socialite-be/internal/model"
)

type NotificationMapper struct{}

func NewNotificationMapper() *NotificationMapper {
	return &NotificationMapper{}
}

func (m *NotificationMapper) ToEntity(n *model.Notification) *entity.Notification {
	if n == nil {
		return nil
	}
	return &entity.Notification{
		Id:        n.Id,
		FromUser:  n.FromUserId,
		ToUser:    n.ToUserId,
		Kind:      entity.NotificationKind(n.Kind),
		Message:   n.Message,
		Community: n.CommunityId,
		Post:      n.PostId,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func (m *NotificationMapper) ToModel(n *entity.Notification) *model.Notification {
	if n == nil {
		return nil
	}
	return &model.Notification{
		Id:          n.Id,
		FromUserId:  n.FromUser,
		ToUserId:    n.ToUser,
		Kind:        string(n.Kind),
		Message:     n.Message,
		CommunityId: n.Community,
		PostId:      n.Post,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}
