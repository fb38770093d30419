package domain

import (
	"time"

	"github.com/google/uuid"
)

// Image is the metadata row for an uploaded picture. The blob itself lives
// behind the blob store and is only referenced by Locator; deleting the row
// never deletes the blob.
type Image struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Locator   string
	URL       string
	MimeType  string
	SizeBytes int64
	Width     *int
	Height    *int
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Deleted reports whether the metadata row has been tombstoned.
func (i Image) Deleted() bool {
	return i.DeletedAt != nil
}

// OwnedBy reports whether the image belongs to the given user.
func (i Image) OwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}
