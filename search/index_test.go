package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"ghostsnap/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewMessageIndex(writer, slog.Default())
}

func indexedMessage(sender, recipient uuid.UUID, content string) domain.Message {
	at := time.Now().UTC()
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

func Test_Search_Scoped_To_Participants(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	alice, bob, clara := uuid.New(), uuid.New(), uuid.New()
	mine := indexedMessage(alice, bob, "picnic at the lake tomorrow")
	theirs := indexedMessage(bob, clara, "picnic plans for saturday")
	req.NoError(index.Index(mine))
	req.NoError(index.Index(theirs))

	ids, err := index.Search(context.Background(), alice, "picnic", 10)
	req.NoError(err)
	req.Len(ids, 1)
	req.Equal(mine.ID, ids[0])

	// Bob participates in both conversations.
	ids, err = index.Search(context.Background(), bob, "picnic", 10)
	req.NoError(err)
	req.Len(ids, 2)
}

func Test_Search_No_Match(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	alice, bob := uuid.New(), uuid.New()
	req.NoError(index.Index(indexedMessage(alice, bob, "hello world")))

	ids, err := index.Search(context.Background(), alice, "absent", 10)
	req.NoError(err)
	req.Empty(ids)
}

func Test_Remove_Drops_Document(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	alice, bob := uuid.New(), uuid.New()
	message := indexedMessage(alice, bob, "soon to vanish")
	req.NoError(index.Index(message))
	req.NoError(index.Remove(message.ID))

	ids, err := index.Search(context.Background(), alice, "vanish", 10)
	req.NoError(err)
	req.Empty(ids)
}

func Test_Index_Replaces_Document(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)

	alice, bob := uuid.New(), uuid.New()
	message := indexedMessage(alice, bob, "original wording")
	req.NoError(index.Index(message))

	message.Content = "edited wording"
	req.NoError(index.Index(message))

	ids, err := index.Search(context.Background(), alice, "original", 10)
	req.NoError(err)
	req.Empty(ids)

	ids, err = index.Search(context.Background(), alice, "edited", 10)
	req.NoError(err)
	req.Len(ids, 1)
}
