package projection

import (
	"log/slog"
	"testing"
	"time"

	"ghostsnap/domain"
	"ghostsnap/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type projectionHarness struct {
	conversations *Conversations
	messages      repositories.IMessageRepository
	users         repositories.IUserRepository
	now           time.Time
	alice         uuid.UUID
	bob           uuid.UUID
	clara         uuid.UUID
}

func newProjectionHarness(t *testing.T) *projectionHarness {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	h := &projectionHarness{
		messages: repositories.NewMessageRepository(db, slog.Default(), nil),
		users:    repositories.NewUserRepository(db),
		now:      time.Now().UTC(),
	}
	h.conversations = NewConversations(h.messages, h.users, func() time.Time { return h.now })

	alice, err := h.users.CreateUser("alice@example.com", "hash", "alice", "Alice")
	req.NoError(err)
	bob, err := h.users.CreateUser("bob@example.com", "hash", "bob", "Bob")
	req.NoError(err)
	clara, err := h.users.CreateUser("clara@example.com", "hash", "clara", "Clara")
	req.NoError(err)
	h.alice, h.bob, h.clara = alice.ID, bob.ID, clara.ID
	return h
}

func (h *projectionHarness) store(t *testing.T, sender, recipient uuid.UUID, content string, offset time.Duration) domain.Message {
	t.Helper()
	at := h.now.Add(offset)
	message := domain.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		Kind:        domain.KindText,
		Status:      domain.StatusSent,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	require.NoError(t, h.messages.Store(message))
	return message
}

func Test_Conversation_Is_Symmetric(t *testing.T) {
	req := require.New(t)
	h := newProjectionHarness(t)
	h.store(t, h.alice, h.bob, "hi bob", -3*time.Minute)
	h.store(t, h.bob, h.alice, "hi alice", -2*time.Minute)
	h.store(t, h.alice, h.clara, "hi clara", -1*time.Minute)

	fromAlice, _, err := h.conversations.Conversation(h.alice, h.bob, nil)
	req.NoError(err)
	fromBob, _, err := h.conversations.Conversation(h.bob, h.alice, nil)
	req.NoError(err)

	req.Len(fromAlice, 2)
	req.Equal(fromAlice, fromBob)
	req.Equal("hi bob", fromAlice[0].Content)
	req.Equal("hi alice", fromAlice[1].Content)
}

func Test_AllMessages_Newest_First(t *testing.T) {
	req := require.New(t)
	h := newProjectionHarness(t)
	h.store(t, h.alice, h.bob, "oldest", -3*time.Minute)
	h.store(t, h.clara, h.alice, "middle", -2*time.Minute)
	h.store(t, h.alice, h.clara, "newest", -1*time.Minute)

	messages, _, err := h.conversations.AllMessages(h.alice, nil)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("newest", messages[0].Content)
	req.Equal("middle", messages[1].Content)
	req.Equal("oldest", messages[2].Content)
}

func Test_Previews_One_Row_Per_Friend(t *testing.T) {
	req := require.New(t)
	h := newProjectionHarness(t)
	h.store(t, h.alice, h.bob, "old bob", -4*time.Minute)
	h.store(t, h.bob, h.alice, "new bob", -3*time.Minute)
	h.store(t, h.alice, h.clara, "only clara", -1*time.Minute)

	previews, err := h.conversations.Previews(h.alice)
	req.NoError(err)
	req.Len(previews, 2)

	// Newest conversation first.
	req.Equal("clara", previews[0].Friend.Handle)
	req.Equal("only clara", previews[0].LastMessage.Content)
	req.Equal("bob", previews[1].Friend.Handle)
	req.Equal("new bob", previews[1].LastMessage.Content)
}

func Test_Previews_Tie_Break_On_Id(t *testing.T) {
	req := require.New(t)
	h := newProjectionHarness(t)

	// Two messages with the exact same timestamp: the higher id wins.
	at := h.now.Add(-1 * time.Minute)
	first := domain.Message{
		ID: uuid.New(), SenderID: h.alice, RecipientID: h.bob,
		Content: "a", Kind: domain.KindText, Status: domain.StatusSent,
		CreatedAt: at, UpdatedAt: at,
	}
	second := domain.Message{
		ID: uuid.New(), SenderID: h.alice, RecipientID: h.bob,
		Content: "b", Kind: domain.KindText, Status: domain.StatusSent,
		CreatedAt: at, UpdatedAt: at,
	}
	req.NoError(h.messages.Store(first))
	req.NoError(h.messages.Store(second))

	expected := first
	if second.ID.String() > first.ID.String() {
		expected = second
	}

	latest, err := h.conversations.LatestPerFriend(h.alice)
	req.NoError(err)
	req.Equal(expected.Content, latest[h.bob].Content)
}

func Test_Projection_Applies_Lazy_Expiry(t *testing.T) {
	req := require.New(t)
	h := newProjectionHarness(t)

	imageID := uuid.New()
	at := h.now.Add(-1 * time.Minute)
	expiry := h.now.Add(-30 * time.Second)
	message := domain.Message{
		ID: uuid.New(), SenderID: h.alice, RecipientID: h.bob,
		Kind: domain.KindImage, ImageID: &imageID,
		Status: domain.StatusRead, IsRead: true, ImgRevealed: true,
		RevealExpiresAt: &expiry,
		CreatedAt:       at, UpdatedAt: at,
	}
	req.NoError(h.messages.Store(message))

	messages, _, err := h.conversations.Conversation(h.alice, h.bob, nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal(domain.StatusExpired, messages[0].Status)

	// Nothing was written back; the derivation happens per read.
	stored, err := h.messages.FindByID(message.ID)
	req.NoError(err)
	req.Equal(domain.StatusRead, stored.Status)
}
