package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	Id           uuid.UUID
	FullName     string
	Username     string
	Email        string
	PasswordHash string
	ProfilePic   string
	Bio          string
	Role         UserRole
	IsPrivate    bool
	Interests    []string
	Location     string
	CoverPhoto   string
	Website      string
	PhoneNumber  string

	// Follow graph, stored embedded on the user document.
	Followers      []uuid.UUID
	Following      []uuid.UUID
	FollowRequests []uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection is the small view of a user that chat and notification
// surfaces embed: enough to render a conversation row.
type Projection struct {
	Id         uuid.UUID
	Username   string
	ProfilePic string
}

func (u *User) Projection() Projection {
	return Projection{Id: u.Id, Username: u.Username, ProfilePic: u.ProfilePic}
}

func (u *User) IsFollowedBy(userID uuid.UUID) bool {
	return containsID(u.Followers, userID)
}

func (u *User) HasFollowRequestFrom(userID uuid.UUID) bool {
	return containsID(u.FollowRequests, userID)
}

func (u *User) AddFollower(userID uuid.UUID) {
	if !containsID(u.Followers, userID) {
		u.Followers = append(u.Followers, userID)
	}
}

func (u *User) RemoveFollower(userID uuid.UUID) {
	u.Followers = removeID(u.Followers, userID)
}

func (u *User) AddFollowing(userID uuid.UUID) {
	if !containsID(u.Following, userID) {
		u.Following = append(u.Following, userID)
	}
}

func (u *User) RemoveFollowing(userID uuid.UUID) {
	u.Following = removeID(u.Following, userID)
}

func (u *User) AddFollowRequest(userID uuid.UUID) {
	if !containsID(u.FollowRequests, userID) {
		u.FollowRequests = append(u.FollowRequests, userID)
	}
}

func (u *User) RemoveFollowRequest(userID uuid.UUID) {
	u.FollowRequests = removeID(u.FollowRequests, userID)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
