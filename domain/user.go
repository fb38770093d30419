package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Identity is owned by the auth layer;
// the messaging core only ever references users by id.
type User struct {
	ID           uuid.UUID
	Email        string
	Handle       string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the public subset of a user, safe to hand to other users.
type Profile struct {
	ID          uuid.UUID
	Handle      string
	DisplayName string
}

// Profile extracts the public fields of the user.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Handle: u.Handle, DisplayName: u.DisplayName}
}
