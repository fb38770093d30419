// Package projection derives read-side views from stored messages: ordered
// threads, the recency-first "all messages" feed and chat-list previews.
// It never mutates anything.
package projection

import (
	"sort"
	"time"

	"ghostsnap/domain"
	"ghostsnap/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Preview is one chat-list row: the counterpart's profile and the most
// recent message exchanged with them.
type Preview struct {
	Friend      domain.Profile
	LastMessage domain.Message
}

type Conversations struct {
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	now      func() time.Time
}

func NewConversations(messages repositories.IMessageRepository, users repositories.IUserRepository, now func() time.Time) *Conversations {
	if now == nil {
		now = time.Now
	}
	return &Conversations{messages: messages, users: users, now: now}
}

// Conversation returns the thread between two users in chronological order.
// The underlying conversation key is the unordered pair, so swapping the
// arguments yields the same messages.
func (c *Conversations) Conversation(userID, friendID uuid.UUID, cursor *string) ([]domain.Message, *string, error) {
	messages, next, err := c.messages.Conversation(userID, friendID, cursor)
	if err != nil {
		return nil, nil, err
	}
	return c.surfaceAll(messages), next, nil
}

// AllMessages returns everything the user sent or received, most recent
// first. The asymmetry with Conversation is intentional: recency-first for
// triage, chronological for reading a thread.
func (c *Conversations) AllMessages(userID uuid.UUID, cursor *string) ([]domain.Message, *string, error) {
	messages, next, err := c.messages.AllForUser(userID, cursor)
	if err != nil {
		return nil, nil, err
	}
	return c.surfaceAll(messages), next, nil
}

// LatestPerFriend returns the single most recent message per counterpart.
// Ties on identical timestamps go to the higher message id, which keeps the
// result deterministic.
func (c *Conversations) LatestPerFriend(userID uuid.UUID) (map[uuid.UUID]domain.Message, error) {
	latest, err := c.messages.LatestPerCounterpart(userID)
	if err != nil {
		return nil, err
	}
	return lo.MapValues(latest, func(message domain.Message, _ uuid.UUID) domain.Message {
		return c.surface(message)
	}), nil
}

// Previews builds the chat list: one row per counterpart with the resolved
// profile, newest conversation first.
func (c *Conversations) Previews(userID uuid.UUID) ([]Preview, error) {
	latest, err := c.LatestPerFriend(userID)
	if err != nil {
		return nil, err
	}

	previews := make([]Preview, 0, len(latest))
	for friendID, message := range latest {
		friend, err := c.users.GetUserByID(friendID)
		if err != nil {
			return nil, err
		}
		previews = append(previews, Preview{
			Friend:      friend.Profile(),
			LastMessage: message,
		})
	}
	sort.Slice(previews, func(i, j int) bool {
		a, b := previews[i].LastMessage, previews[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
	return previews, nil
}

func (c *Conversations) surfaceAll(messages []domain.Message) []domain.Message {
	return lo.Map(messages, func(message domain.Message, _ int) domain.Message {
		return c.surface(message)
	})
}

// surface applies lazy expiry at read time: a revealed image past its
// countdown reports expired without any write having happened.
func (c *Conversations) surface(message domain.Message) domain.Message {
	message.Status = message.EffectiveStatus(c.now())
	return message
}
