// Package search maintains the full-text index over text message content.
// The index is a projection: badger stays the source of truth and search
// results are resolved back through the message repository.
package search

import (
	"context"
	"log/slog"

	"ghostsnap/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index adds or replaces a message document. Only the participants are
// stored alongside the content so queries can be scoped to the caller.
func (x *MessageIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("content", message.Content)).
		AddField(bluge.NewKeywordField("sender", message.SenderID.String())).
		AddField(bluge.NewKeywordField("recipient", message.RecipientID.String()))
	return x.writer.Update(doc.ID(), doc)
}

// Remove drops a message from the index, used when the record is tombstoned.
func (x *MessageIndex) Remove(id uuid.UUID) error {
	return x.writer.Delete(bluge.Identifier(id.String()))
}

// Search returns the ids of the caller's messages matching the terms, best
// match first. The participant clause is part of the query itself, so a
// caller can never match content from conversations they are not part of.
func (x *MessageIndex) Search(ctx context.Context, userID uuid.UUID, terms string, limit int) ([]uuid.UUID, error) {
	reader, err := x.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			x.log.Error("Closing index reader failed", "error", err)
		}
	}()

	participant := bluge.NewBooleanQuery()
	participant.AddShould(bluge.NewTermQuery(userID.String()).SetField("sender"))
	participant.AddShould(bluge.NewTermQuery(userID.String()).SetField("recipient"))
	participant.SetMinShould(1)

	query := bluge.NewBooleanQuery()
	query.AddMust(bluge.NewMatchQuery(terms).SetField("content"))
	query.AddMust(participant)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, err := uuid.Parse(string(value)); err == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
