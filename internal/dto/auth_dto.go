package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignupRequest struct {
	FullName        string `json:"fullName" validate:"required,min=2,max=100"`
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type UserResponse struct {
	Id          uuid.UUID `json:"id"`
	FullName    string    `json:"fullName"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	ProfilePic  string    `json:"profilePic"`
	Bio         string    `json:"bio"`
	Role        string    `json:"role"`
	IsPrivate   bool      `json:"isPrivate"`
	Interests   []string  `json:"interests,omitempty"`
	Location    string    `json:"location,omitempty"`
	CoverPhoto  string    `json:"coverPhoto,omitempty"`
	Website     string    `json:"website,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
