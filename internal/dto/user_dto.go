package dto

import (
	"github.com/google/uuid"
)

// UserProjection is the small user view embedded in chat and notification
// payloads.
type UserProjection struct {
	Id         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profilePic"`
}

// UpdateProfileRequest is the typed partial update: every recognized field
// is applied only when present. Unknown fields are rejected by the decoder
// rather than merged dynamically.
type UpdateProfileRequest struct {
	FullName    *string   `json:"fullName" validate:"omitempty,min=2,max=100"`
	Username    *string   `json:"username" validate:"omitempty,min=3,max=50"`
	Email       *string   `json:"email" validate:"omitempty,email"`
	Bio         *string   `json:"bio"`
	ProfilePic  *string   `json:"profilePicture"`
	CoverPhoto  *string   `json:"coverPhoto"`
	Website     *string   `json:"website"`
	Location    *string   `json:"location"`
	PhoneNumber *string   `json:"phone"`
	Interests   *[]string `json:"interests"`
	IsPrivate   *bool     `json:"isPrivate"`
}

type UpdateProfileResponse struct {
	ChangedFields []string     `json:"changedFields"`
	Profile       UserResponse `json:"updatedProfile"`
}

// FriendshipStatus values reported by the user listing.
const (
	FriendshipFriends   = "friends"
	FriendshipRequested = "requested"
	FriendshipPending   = "pending"
)

type UserWithStatusResponse struct {
	UserResponse
	FollowerCount    int    `json:"followerCount"`
	FollowingCount   int    `json:"followingCount"`
	FriendshipStatus string `json:"friendshipStatus,omitempty"`
}

type FollowResponse struct {
	Status string `json:"status"`
}

// Follow outcome statuses.
const (
	FollowStatusFollowing    = "following"
	FollowStatusUnfollowed   = "unfollowed"
	FollowStatusRequestSent  = "request_sent"
	FollowStatusAlreadyAsked = "request_pending"
	FollowStatusAccepted     = "accepted"
	FollowStatusRejected     = "rejected"
)
