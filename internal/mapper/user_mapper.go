package mapper

import (
	"socialite-be/internal/entity"
	"socialite-be/internal/model"

	"gorm.io/datatypes"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:             u.Id,
		FullName:       u.FullName,
		Username:       u.Username,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		ProfilePic:     u.ProfilePic,
		Bio:            u.Bio,
		Role:           entity.UserRole(u.Role),
		IsPrivate:      u.IsPrivate,
		Interests:      u.Interests,
		Location:       u.Location,
		CoverPhoto:     u.CoverPhoto,
		Website:        u.Website,
		PhoneNumber:    u.PhoneNumber,
		Followers:      u.Followers,
		Following:      u.Following,
		FollowRequests: u.FollowRequests,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:             u.Id,
		FullName:       u.FullName,
		Username:       u.Username,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		ProfilePic:     u.ProfilePic,
		Bio:            u.Bio,
		Role:           string(u.Role),
		IsPrivate:      u.IsPrivate,
		Interests:      datatypes.NewJSONSlice(u.Interests),
		Location:       u.Location,
		CoverPhoto:     u.CoverPhoto,
		Website:        u.Website,
		PhoneNumber:    u.PhoneNumber,
		Followers:      datatypes.NewJSONSlice(u.Followers),
		Following:      datatypes.NewJSONSlice(u.Following),
		FollowRequests: datatypes.NewJSONSlice(u.FollowRequests),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
