//go:generate go run go.uber.org/mock/mockgen -source=message_service.go -destination=../mocks/mock_message_service.go -package=mocks
package services

import (
	"context"
	"log/slog"
	"time"

	"ghostsnap/domain"
	"ghostsnap/errors"
	"ghostsnap/moderation"
	"ghostsnap/repositories"
	"ghostsnap/search"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injected so tests can drive the
// view-once countdown deterministically.
type Clock func() time.Time

type IMessageService interface {
	Send(ctx context.Context, senderID, recipientID uuid.UUID, content string, kind domain.Kind, imageID *uuid.UUID) (domain.Message, error)
	Get(callerID, messageID uuid.UUID) (domain.Message, error)
	UpdateContent(callerID, messageID uuid.UUID, content *string, status *domain.Status) (domain.Message, error)
	MarkRead(callerID, messageID uuid.UUID) (domain.Message, error)
	RevealImage(callerID, messageID uuid.UUID) (domain.Message, error)
	Delete(callerID, messageID uuid.UUID) error
	Search(ctx context.Context, callerID uuid.UUID, terms string, limit int) ([]domain.Message, error)
}

// MessageService owns the message lifecycle: creation, authorization-scoped
// reads, mutations and the view-once reveal machine. Authorization failures
// and missing records are deliberately reported as the same
// ErrNotFoundOrUnauthorized so callers cannot probe other users' message ids.
type MessageService struct {
	messages     repositories.IMessageRepository
	images       repositories.IImageRepository
	users        repositories.IUserRepository
	index        *search.MessageIndex
	moderator    *moderation.Moderator
	log          *slog.Logger
	revealWindow time.Duration
	now          Clock
}

func NewMessageService(
	messages repositories.IMessageRepository,
	images repositories.IImageRepository,
	users repositories.IUserRepository,
	index *search.MessageIndex,
	moderator *moderation.Moderator,
	log *slog.Logger,
	revealWindow time.Duration,
	now Clock,
) *MessageService {
	if now == nil {
		now = time.Now
	}
	return &MessageService{
		messages:     messages,
		images:       images,
		users:        users,
		index:        index,
		moderator:    moderator,
		log:          log,
		revealWindow: revealWindow,
		now:          now,
	}
}

// Send validates the recipient and, for image messages, the sender's
// ownership of the referenced image, then persists a new message with
// status=sent. Sending does not require a friendship: the ledger is a
// contact-list convenience, not an authorization gate.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string, kind domain.Kind, imageID *uuid.UUID) (domain.Message, error) {
	if recipientID == senderID {
		return domain.Message{}, errors.ErrInvalidRecipient
	}
	exists, err := s.users.Exists(recipientID)
	if err != nil {
		return domain.Message{}, err
	}
	if !exists {
		return domain.Message{}, errors.ErrInvalidRecipient
	}

	if kind == domain.KindImage {
		if imageID == nil {
			return domain.Message{}, errors.ErrImageNotOwned
		}
		image, err := s.images.Find(*imageID)
		if err == errors.ErrNotFound {
			return domain.Message{}, errors.ErrImageNotOwned
		}
		if err != nil {
			return domain.Message{}, err
		}
		if !image.OwnedBy(senderID) {
			return domain.Message{}, errors.ErrImageNotOwned
		}
	}

	if kind == domain.KindText && s.moderator != nil {
		sanitized, found := s.moderator.Censor(content)
		if len(found) > 0 {
			s.log.Warn("Censored outgoing message",
				"sender", senderID,
				"lang", moderation.DetectLanguage(content),
				"words", len(found))
		}
		content = sanitized
	}

	at := s.now().UTC()
	message := domain.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Kind:        kind,
		ImageID:     imageID,
		Status:      domain.StatusSent,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if err := s.messages.Store(message); err != nil {
		return domain.Message{}, err
	}

	if kind == domain.KindText && s.index != nil {
		if err := s.index.Index(message); err != nil {
			// The index is a projection; losing one document must not fail
			// the send.
			s.log.Error("Indexing message failed", "message_id", message.ID, "error", err)
		}
	}
	return message, nil
}

// Get returns the message when the caller is a participant. Anyone else gets
// the not-found answer, indistinguishable from a missing record.
func (s *MessageService) Get(callerID, messageID uuid.UUID) (domain.Message, error) {
	message, err := s.authorized(messageID, callerID)
	if err != nil {
		return domain.Message{}, err
	}
	return s.surface(message), nil
}

// UpdateContent mutates only the supplied fields, sender only. Once the
// view-once countdown has elapsed the message is frozen.
func (s *MessageService) UpdateContent(callerID, messageID uuid.UUID, content *string, status *domain.Status) (domain.Message, error) {
	message, err := s.messages.FindByID(messageID)
	if err == errors.ErrNotFound {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return domain.Message{}, err
	}
	if message.SenderID != callerID {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if message.Expired(s.now()) {
		return domain.Message{}, errors.ErrMessageExpired
	}

	if content != nil {
		message.Content = *content
	}
	if status != nil {
		message.Status = *status
	}
	message.UpdatedAt = s.now().UTC()
	if err := s.messages.Update(message); err != nil {
		return domain.Message{}, err
	}

	if content != nil && message.Kind == domain.KindText && s.index != nil {
		if err := s.index.Index(message); err != nil {
			s.log.Error("Re-indexing message failed", "message_id", message.ID, "error", err)
		}
	}
	return s.surface(message), nil
}

// MarkRead flips the read state, recipient only. Calling it twice yields the
// same observable state with no error, which keeps client retries safe.
func (s *MessageService) MarkRead(callerID, messageID uuid.UUID) (domain.Message, error) {
	message, err := s.messages.FindByID(messageID)
	if err == errors.ErrNotFound {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return domain.Message{}, err
	}
	if message.RecipientID != callerID {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if message.IsRead && message.Status == domain.StatusRead {
		return s.surface(message), nil
	}

	message.IsRead = true
	message.Status = domain.StatusRead
	message.UpdatedAt = s.now().UTC()
	if err := s.messages.Update(message); err != nil {
		return domain.Message{}, err
	}
	return s.surface(message), nil
}

// RevealImage starts the view-once countdown, recipient only. The expiry
// clock starts exactly once: the repository performs the first-reveal write
// as a compare-and-set, and every later call is a no-op returning the
// current state.
func (s *MessageService) RevealImage(callerID, messageID uuid.UUID) (domain.Message, error) {
	message, err := s.messages.FindByID(messageID)
	if err == errors.ErrNotFound {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return domain.Message{}, err
	}
	if message.RecipientID != callerID {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if message.Kind != domain.KindImage {
		return domain.Message{}, errors.ErrNotAnImageMessage
	}

	at := s.now().UTC()
	revealed, first, err := s.messages.Reveal(messageID, at.Add(s.revealWindow), at)
	if err == errors.ErrNotFound {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return domain.Message{}, err
	}
	if first {
		s.log.Info("Image revealed",
			"message_id", messageID,
			"expires_at", revealed.RevealExpiresAt)
	}
	return s.surface(revealed), nil
}

// Delete tombstones the message, sender only.
func (s *MessageService) Delete(callerID, messageID uuid.UUID) error {
	message, err := s.messages.FindByID(messageID)
	if err == errors.ErrNotFound {
		return errors.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return err
	}
	if message.SenderID != callerID {
		return errors.ErrNotFoundOrUnauthorized
	}
	if err := s.messages.SoftDelete(messageID, s.now().UTC()); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.Remove(messageID); err != nil {
			s.log.Error("Removing message from index failed", "message_id", messageID, "error", err)
		}
	}
	return nil
}

// Search resolves full-text hits back through the repository so tombstoned
// messages drop out and statuses are derived at read time.
func (s *MessageService) Search(ctx context.Context, callerID uuid.UUID, terms string, limit int) ([]domain.Message, error) {
	if s.index == nil {
		return nil, nil
	}
	ids, err := s.index.Search(ctx, callerID, terms, limit)
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	for _, id := range ids {
		message, err := s.messages.FindByID(id)
		if err == errors.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !message.Involves(callerID) {
			continue
		}
		messages = append(messages, s.surface(message))
	}
	return messages, nil
}

// authorized loads a message for a participant, collapsing both failure
// modes into ErrNotFoundOrUnauthorized.
func (s *MessageService) authorized(messageID, callerID uuid.UUID) (domain.Message, error) {
	message, err := s.messages.FindByID(messageID)
	if err == errors.ErrNotFound {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return domain.Message{}, err
	}
	if !message.Involves(callerID) {
		return domain.Message{}, errors.ErrNotFoundOrUnauthorized
	}
	return message, nil
}

// surface stamps the lazily derived status onto the copy handed to callers.
// Nothing is written back: the stored row may go stale and stays harmless.
func (s *MessageService) surface(message domain.Message) domain.Message {
	message.Status = message.EffectiveStatus(s.now())
	return message
}
