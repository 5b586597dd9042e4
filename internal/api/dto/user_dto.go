package dto

import (
	"time"

	"github.com/smartcommunity/portal/internal/domain"
)

// RegisterRequest payload for resident self-registration.
type RegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Block       string `json:"block"`
	HouseNumber string `json:"houseNumber"`
	Password    string `json:"password"`
}

// CreateAccountRequest payload for administrator-created accounts.
type CreateAccountRequest struct {
	RegisterRequest
	Role domain.Role `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DenyRequest payload for rejecting an account.
type DenyRequest struct {
	Reason string `json:"reason"`
}

// UserResponse is the public profile of an account.
type UserResponse struct {
	ID           string            `json:"id"`
	FullName     string            `json:"fullName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone,omitempty"`
	Block        string            `json:"block,omitempty"`
	HouseNumber  string            `json:"houseNumber,omitempty"`
	Role         domain.Role       `json:"role"`
	Status       domain.UserStatus `json:"status"`
	DenialReason *string           `json:"denialReason,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// LoginResponse standard response for the login endpoint.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// NewUserResponse maps a domain user, leaving out the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		Phone:        u.Phone,
		Block:        u.Block,
		HouseNumber:  u.HouseNumber,
		Role:         u.Role,
		Status:       u.Status,
		DenialReason: u.DenialReason,
		CreatedAt:    u.CreatedAt,
	}
}
