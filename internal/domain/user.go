package domain

import "time"

// UserStatus represents the approval state of an account.
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusDenied   UserStatus = "DENIED"
)

// User is a community member: a resident, a security guard or an administrator.
type User struct {
	ID           string
	FullName     string
	Email        string
	Phone        string
	Block        string
	HouseNumber  string
	PasswordHash string
	Role         Role
	Status       UserStatus
	DenialReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSignIn reports whether the account may obtain a bearer token.
func (u *User) CanSignIn() bool {
	return u != nil && u.Status == UserStatusApproved
}
