package repositories

import (
	"log/slog"
	"testing"
	"time"

	"ghostsnap/domain"
	"ghostsnap/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func textMessage(sender, recipient uuid.UUID, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		Kind:        domain.KindText,
		Status:      domain.StatusSent,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func Test_Store_And_Find_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	alice, bob := uuid.New(), uuid.New()
	at := time.Now().UTC().Truncate(time.Nanosecond)
	message := textMessage(alice, bob, "this message will self destruct", at)
	req.NoError(repository.Store(message))

	fetched, err := repository.FindByID(message.ID)
	req.NoError(err)
	req.Equal(message.ID, fetched.ID)
	req.Equal(message.Content, fetched.Content)
	req.Equal(domain.StatusSent, fetched.Status)
	req.True(message.CreatedAt.Equal(fetched.CreatedAt))
}

func Test_Find_Unknown_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	_, err := repository.FindByID(uuid.New())
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Conversation_Chronological_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	alice, bob := uuid.New(), uuid.New()
	at := time.Now().UTC()
	first := textMessage(alice, bob, "first", at)
	second := textMessage(bob, alice, "second", at.Add(1*time.Minute))
	third := textMessage(alice, bob, "third", at.Add(2*time.Minute))
	for _, m := range []domain.Message{third, first, second} {
		req.NoError(repository.Store(m))
	}

	messages, _, err := repository.Conversation(alice, bob, nil)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("first", messages[0].Content)
	req.Equal("second", messages[1].Content)
	req.Equal("third", messages[2].Content)

	// The conversation key is the unordered pair: swapping the arguments
	// yields the exact same thread.
	swapped, _, err := repository.Conversation(bob, alice, nil)
	req.NoError(err)
	req.Equal(messages, swapped)
}

func Test_AllForUser_Most_Recent_First(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	alice, bob, clara := uuid.New(), uuid.New(), uuid.New()
	at := time.Now().UTC()
	req.NoError(repository.Store(textMessage(alice, bob, "to bob", at)))
	req.NoError(repository.Store(textMessage(clara, alice, "from clara", at.Add(1*time.Minute))))
	req.NoError(repository.Store(textMessage(alice, clara, "to clara", at.Add(2*time.Minute))))

	messages, _, err := repository.AllForUser(alice, nil)
	req.NoError(err)
	req.Len(messages, 3)
	req.Equal("to clara", messages[0].Content)
	req.Equal("from clara", messages[1].Content)
	req.Equal("to bob", messages[2].Content)
}

func Test_Conversation_Cursor_Paging(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewMessageRepository(openTestDB(t), slog.Default(), &limit)

	alice, bob := uuid.New(), uuid.New()
	at := time.Now().UTC()
	contents := []string{"one", "two", "three", "four", "five"}
	for i, content := range contents {
		req.NoError(repository.Store(
			textMessage(alice, bob, content, at.Add(time.Duration(i)*time.Minute))))
	}

	var collected []string
	var cursor *string
	for range 3 {
		messages, next, err := repository.Conversation(alice, bob, cursor)
		req.NoError(err)
		for _, m := range messages {
			collected = append(collected, m.Content)
		}
		if len(messages) == 0 {
			break
		}
		cursor = next
	}
	req.Equal(contents, collected)
}

func Test_Reveal_Sets_Expiry_Once(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	alice, bob := uuid.New(), uuid.New()
	at := time.Now().UTC()
	imageID := uuid.New()
	message := textMessage(alice, bob, "", at)
	message.Kind = domain.KindImage
	message.ImageID = &imageID
	req.NoError(repository.Store(message))

	expiresAt := at.Add(10 * time.Second)
	revealed, first, err := repository.Reveal(message.ID, expiresAt, at)
	req.NoError(err)
	req.True(first)
	req.True(revealed.ImgRevealed)
	req.True(revealed.IsRead)
	req.NotNil(revealed.RevealExpiresAt)
	req.True(expiresAt.Equal(*revealed.RevealExpiresAt))

	// A second reveal must not restart the countdown.
	laterExpiry := at.Add(1 * time.Hour)
	again, first, err := repository.Reveal(message.ID, laterExpiry, at.Add(5*time.Second))
	req.NoError(err)
	req.False(first)
	req.True(expiresAt.Equal(*again.RevealExpiresAt))
}

func Test_SoftDelete_Hides_Message(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	alice, bob := uuid.New(), uuid.New()
	at := time.Now().UTC()
	kept := textMessage(alice, bob, "kept", at)
	deleted := textMessage(alice, bob, "deleted", at.Add(1*time.Minute))
	req.NoError(repository.Store(kept))
	req.NoError(repository.Store(deleted))

	req.NoError(repository.SoftDelete(deleted.ID, at.Add(2*time.Minute)))

	_, err := repository.FindByID(deleted.ID)
	req.ErrorIs(err, errors.ErrNotFound)

	messages, _, err := repository.Conversation(alice, bob, nil)
	req.NoError(err)
	req.Len(messages, 1)
	req.Equal("kept", messages[0].Content)

	// Deleting twice reports not found.
	req.ErrorIs(repository.SoftDelete(deleted.ID, at), errors.ErrNotFound)
}

func Test_LatestPerCounterpart(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	alice, bob, clara := uuid.New(), uuid.New(), uuid.New()
	at := time.Now().UTC()
	req.NoError(repository.Store(textMessage(alice, bob, "old bob", at)))
	req.NoError(repository.Store(textMessage(bob, alice, "new bob", at.Add(1*time.Minute))))
	req.NoError(repository.Store(textMessage(alice, clara, "only clara", at.Add(2*time.Minute))))

	latest, err := repository.LatestPerCounterpart(alice)
	req.NoError(err)
	req.Len(latest, 2)
	req.Equal("new bob", latest[bob].Content)
	req.Equal("only clara", latest[clara].Content)
}

func Test_LatestPerCounterpart_Skips_Deleted(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	alice, bob := uuid.New(), uuid.New()
	at := time.Now().UTC()
	older := textMessage(alice, bob, "older", at)
	newer := textMessage(alice, bob, "newer", at.Add(1*time.Minute))
	req.NoError(repository.Store(older))
	req.NoError(repository.Store(newer))
	req.NoError(repository.SoftDelete(newer.ID, at.Add(2*time.Minute)))

	latest, err := repository.LatestPerCounterpart(alice)
	req.NoError(err)
	req.Len(latest, 1)
	req.Equal("older", latest[bob].Content)
}
