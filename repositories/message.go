//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ghostsnap/domain"
	"ghostsnap/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	FindByID(id uuid.UUID) (domain.Message, error)
	Update(message domain.Message) error
	Reveal(id uuid.UUID, expiresAt, now time.Time) (domain.Message, bool, error)
	SoftDelete(id uuid.UUID, at time.Time) error
	Conversation(a, b uuid.UUID, cursor *string) ([]domain.Message, *string, error)
	AllForUser(userID uuid.UUID, cursor *string) ([]domain.Message, *string, error)
	LatestPerCounterpart(userID uuid.UUID) (map[uuid.UUID]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the stored representation of a message. Timestamps are
// UnixNano so the record round-trips without timezone surprises.
type diskMessage struct {
	ID              string  `json:"id"`
	SenderID        string  `json:"sender_id"`
	RecipientID     string  `json:"recipient_id"`
	Content         string  `json:"content"`
	Kind            string  `json:"kind"`
	ImageID         *string `json:"image_id,omitempty"`
	IsRead          bool    `json:"is_read"`
	Status          string  `json:"status"`
	ImgRevealed     bool    `json:"img_viewed"`
	RevealExpiresAt *int64  `json:"expiry_timestamp,omitempty"`
	CreatedAt       int64   `json:"created_at"`
	UpdatedAt       int64   `json:"updated_at"`
	DeletedAt       *int64  `json:"deleted_at,omitempty"`
}

// Key layout. The record lives under message:{id}; two index families point
// back at it with a 19-digit zero-padded UnixNano segment so a plain prefix
// scan yields chronological order, uuid last as a collision disconnector:
//
//	message:{id}                          -> record
//	conv:{pairKey}:{paddedNanos}:{id}     -> id   (pairKey is the sorted pair)
//	inbox:{userID}:{paddedNanos}:{id}     -> id   (one entry per participant)
func recordKey(id uuid.UUID) []byte {
	return []byte("message:" + id.String())
}

func convKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("conv:%s:%019d:%s",
		m.ConversationKey(), m.CreatedAt.UnixNano(), m.ID))
}

func inboxKey(userID uuid.UUID, m domain.Message) []byte {
	return []byte(fmt.Sprintf("inbox:%s:%019d:%s",
		userID, m.CreatedAt.UnixNano(), m.ID))
}

// Store persists a new message and its two index entries in one transaction.
func (r MessageRepository) Store(message domain.Message) error {
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	idBytes := []byte(message.ID.String())

	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recordKey(message.ID), data); err != nil {
			return err
		}
		if err := txn.Set(convKey(message), idBytes); err != nil {
			return err
		}
		if err := txn.Set(inboxKey(message.SenderID, message), idBytes); err != nil {
			return err
		}
		return txn.Set(inboxKey(message.RecipientID, message), idBytes)
	})
}

// FindByID loads a message. Tombstoned records are reported as not found,
// the uniform query-time filter for soft deletes.
func (r MessageRepository) FindByID(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		message, err = r.loadMessage(txn, id)
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}
	if message.Deleted() {
		return domain.Message{}, errors.ErrNotFound
	}
	return message, nil
}

// Update rewrites the record in place. CreatedAt never changes, so the index
// entries written by Store stay valid.
func (r MessageRepository) Update(message domain.Message) error {
	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(recordKey(message.ID)); err != nil {
			return err
		}
		return txn.Set(recordKey(message.ID), data)
	})
}

// Reveal performs the first-reveal transition as a compare-and-set on
// "reveal timestamp is currently unset", inside a single read-write
// transaction. Two near-simultaneous reveals must not each stamp their own
// expiry; badger detects the write conflict and the retry observes the
// timestamp already set, turning the loser into a no-op.
// The returned bool reports whether this call was the first reveal.
func (r MessageRepository) Reveal(id uuid.UUID, expiresAt, now time.Time) (domain.Message, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var message domain.Message
		var first bool
		err := r.db.Update(func(txn *badger.Txn) error {
			var err error
			message, err = r.loadMessage(txn, id)
			if err != nil {
				return err
			}
			if message.Deleted() {
				return errors.ErrNotFound
			}
			if message.RevealExpiresAt != nil {
				// Not the first reveal: the clock started once already.
				first = false
				return nil
			}
			first = true
			message.ImgRevealed = true
			message.IsRead = true
			message.RevealExpiresAt = &expiresAt
			message.UpdatedAt = now

			data, err := json.Marshal(fromMessage(message))
			if err != nil {
				return fmt.Errorf("marshal failed: %w", err)
			}
			return txn.Set(recordKey(id), data)
		})
		if err == badger.ErrConflict {
			r.log.Debug("Reveal conflict, retrying", "message_id", id)
			continue
		}
		if err != nil {
			return domain.Message{}, false, err
		}
		return message, first, nil
	}
	return domain.Message{}, false, badger.ErrConflict
}

// SoftDelete tombstones the record. Index entries stay behind and are
// filtered out when the record is loaded.
func (r MessageRepository) SoftDelete(id uuid.UUID, at time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		message, err := r.loadMessage(txn, id)
		if err != nil {
			return err
		}
		if message.Deleted() {
			return errors.ErrNotFound
		}
		message.DeletedAt = &at
		message.UpdatedAt = at
		data, err := json.Marshal(fromMessage(message))
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(recordKey(id), data)
	})
}

// Conversation returns the thread between two users in chronological order,
// walking the conv index forward from the optional cursor.
func (r MessageRepository) Conversation(a, b uuid.UUID, cursor *string) ([]domain.Message, *string, error) {
	prefix := fmt.Sprintf("conv:%s:", domain.PairKey(a, b))
	return r.scanIndex(prefix, cursor, false)
}

// AllForUser returns every message the user sent or received, most recent
// first, walking the inbox index in reverse from the optional cursor.
func (r MessageRepository) AllForUser(userID uuid.UUID, cursor *string) ([]domain.Message, *string, error) {
	prefix := fmt.Sprintf("inbox:%s:", userID)
	return r.scanIndex(prefix, cursor, true)
}

// LatestPerCounterpart returns the most recent non-deleted message for each
// distinct conversation partner. The reverse scan visits newer keys first;
// for identical timestamps the higher message id sorts first, which is the
// tie-break the chat list relies on.
func (r MessageRepository) LatestPerCounterpart(userID uuid.UUID) (map[uuid.UUID]domain.Message, error) {
	latest := make(map[uuid.UUID]domain.Message)
	prefixStr := fmt.Sprintf("inbox:%s:", userID)
	prefix := []byte(prefixStr)

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte{}, prefix...)
		seekKey = append(seekKey, []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			idBytes, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(string(idBytes))
			if err != nil {
				return err
			}
			message, err := r.loadMessage(txn, id)
			if err != nil {
				return err
			}
			if message.Deleted() {
				continue
			}
			counterpart := message.Counterpart(userID)
			if _, seen := latest[counterpart]; !seen {
				latest[counterpart] = message
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// scanIndex walks an index prefix in the requested direction, resolving each
// entry to its record and skipping tombstones. The returned cursor is the key
// remainder of the last visited entry; feeding it back resumes after it.
func (r MessageRepository) scanIndex(prefixStr string, cursor *string, reverse bool) ([]domain.Message, *string, error) {
	var messages []domain.Message
	var lastKey string
	prefix := []byte(prefixStr)
	prefixLen := len(prefixStr)

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = reverse
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte{}, prefix...)
		switch {
		case cursor != nil:
			seekKey = append(seekKey, []byte(*cursor)...)
		case reverse:
			// Past the newest possible padded timestamp, then walk back.
			seekKey = append(seekKey, []byte("9999999999999999999")...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.limitMessages != nil && len(messages) == *r.limitMessages {
				r.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *r.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			idBytes, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(string(idBytes))
			if err != nil {
				return err
			}
			message, err := r.loadMessage(txn, id)
			if err != nil {
				return err
			}
			if message.Deleted() {
				continue
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return messages, &lastKey, nil
}

func (r MessageRepository) loadMessage(txn *badger.Txn, id uuid.UUID) (domain.Message, error) {
	item, err := txn.Get(recordKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.Message{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	var disk diskMessage
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(disk)
}

func fromMessage(m domain.Message) diskMessage {
	disk := diskMessage{
		ID:          m.ID.String(),
		SenderID:    m.SenderID.String(),
		RecipientID: m.RecipientID.String(),
		Content:     m.Content,
		Kind:        string(m.Kind),
		IsRead:      m.IsRead,
		Status:      string(m.Status),
		ImgRevealed: m.ImgRevealed,
		CreatedAt:   m.CreatedAt.UnixNano(),
		UpdatedAt:   m.UpdatedAt.UnixNano(),
	}
	if m.ImageID != nil {
		s := m.ImageID.String()
		disk.ImageID = &s
	}
	if m.RevealExpiresAt != nil {
		n := m.RevealExpiresAt.UnixNano()
		disk.RevealExpiresAt = &n
	}
	if m.DeletedAt != nil {
		n := m.DeletedAt.UnixNano()
		disk.DeletedAt = &n
	}
	return disk
}

func toMessage(disk diskMessage) (domain.Message, error) {
	id, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	senderID, err := uuid.Parse(disk.SenderID)
	if err != nil {
		return domain.Message{}, err
	}
	recipientID, err := uuid.Parse(disk.RecipientID)
	if err != nil {
		return domain.Message{}, err
	}
	message := domain.Message{
		ID:          id,
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     disk.Content,
		Kind:        domain.Kind(disk.Kind),
		IsRead:      disk.IsRead,
		Status:      domain.Status(disk.Status),
		ImgRevealed: disk.ImgRevealed,
		CreatedAt:   time.Unix(0, disk.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, disk.UpdatedAt).UTC(),
	}
	if disk.ImageID != nil {
		imageID, err := uuid.Parse(*disk.ImageID)
		if err != nil {
			return domain.Message{}, err
		}
		message.ImageID = &imageID
	}
	if disk.RevealExpiresAt != nil {
		t := time.Unix(0, *disk.RevealExpiresAt).UTC()
		message.RevealExpiresAt = &t
	}
	if disk.DeletedAt != nil {
		t := time.Unix(0, *disk.DeletedAt).UTC()
		message.DeletedAt = &t
	}
	return message, nil
}
