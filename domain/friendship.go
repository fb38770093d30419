package domain

import (
	"time"

	"github.com/google/uuid"
)

// Friendship is a directed contact entry: the owner considers the friend a
// contact. A→B says nothing about B→A. Removal tombstones the record, it is
// never hard-deleted.
type Friendship struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	FriendUserID uuid.UUID
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

// Deleted reports whether the friendship has been tombstoned.
func (f Friendship) Deleted() bool {
	return f.DeletedAt != nil
}

// FriendshipWithProfile is a friendship resolved with the friend's public
// profile, the shape the contact list is built from.
type FriendshipWithProfile struct {
	Friendship
	Friend Profile
}
