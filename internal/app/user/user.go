/*
Package user holds the persisted user record and its PostgreSQL store.

The presence fields (IsOnline, LastActive) are written by the presence registry
and read by the contacts listing.
*/
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrAlreadyExists is returned when the username or email is taken.
	ErrAlreadyExists = errors.New("user already exists")
)

// User is a row of the users table.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	PasswordHash   string
	ProfilePicture string
	Role           string
	Status         string
	IsOnline       bool
	LastActive     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Public is the client-facing projection of a User. It never includes the password hash.
type Public struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	IsOnline       bool      `json:"isOnline"`
	LastActive     time.Time `json:"lastActive"`
}

// Public returns the client-facing projection of u.
func (u *User) Public() Public {
	return Public{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		Role:           u.Role,
		Status:         u.Status,
		IsOnline:       u.IsOnline,
		LastActive:     u.LastActive,
	}
}

// ProfileUpdate carries optional profile changes; empty fields are left untouched.
type ProfileUpdate struct {
	Username       string
	ProfilePicture string
	Status         string
}
