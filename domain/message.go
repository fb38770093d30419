// Package domain contains the core concepts of the messaging system.
// Types here are pure data plus derivation rules; they never touch storage.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes plain text messages from view-once image messages.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Status is the delivery state of a message. Expired only ever applies to
// image messages whose reveal countdown has elapsed.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusExpired   Status = "expired"
)

// Message is a single text or image message between two users.
// Image messages carry the view-once sub-state: ImgRevealed flips to true on
// the recipient's first reveal and RevealExpiresAt is set exactly once at
// that moment.
type Message struct {
	ID              uuid.UUID
	SenderID        uuid.UUID
	RecipientID     uuid.UUID
	Content         string
	Kind            Kind
	ImageID         *uuid.UUID
	IsRead          bool
	Status          Status
	ImgRevealed     bool
	RevealExpiresAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// EffectiveStatus derives the status visible to callers at a given instant.
// Expiry is computed lazily: a revealed image whose countdown has elapsed
// reports StatusExpired no matter what was last written to storage. This is
// what makes Expired monotonic without any background sweep.
func (m Message) EffectiveStatus(now time.Time) Status {
	if m.Kind == KindImage && m.ImgRevealed &&
		m.RevealExpiresAt != nil && now.After(*m.RevealExpiresAt) {
		return StatusExpired
	}
	return m.Status
}

// Expired reports whether the view-once countdown has elapsed.
func (m Message) Expired(now time.Time) bool {
	return m.EffectiveStatus(now) == StatusExpired
}

// Deleted reports whether the message has been tombstoned.
func (m Message) Deleted() bool {
	return m.DeletedAt != nil
}

// Involves reports whether the user is the sender or the recipient.
func (m Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// Counterpart returns the other participant of the message.
func (m Message) Counterpart(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}

// ConversationKey identifies the two-party thread a message belongs to.
// The pair is unordered: A→B and B→A messages share the same key.
func (m Message) ConversationKey() string {
	return PairKey(m.SenderID, m.RecipientID)
}

// PairKey builds the canonical unordered key for two user ids.
func PairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if strings.Compare(x, y) > 0 {
		x, y = y, x
	}
	return x + ":" + y
}
