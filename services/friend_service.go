//go:generate go run go.uber.org/mock/mockgen -source=friend_service.go -destination=../mocks/mock_friend_service.go -package=mocks
package services

import (
	"time"

	"ghostsnap/domain"
	"ghostsnap/errors"
	"ghostsnap/repositories"

	"github.com/google/uuid"
)

type IFriendService interface {
	ListFriends(ownerID uuid.UUID, limit *int) ([]domain.FriendshipWithProfile, error)
	AddFriend(ownerID, friendUserID uuid.UUID) (domain.Friendship, error)
	RemoveFriend(ownerID, friendshipID uuid.UUID) error
}

// FriendService is the friendship ledger. Entries are directed: adding a
// friend never creates the reverse edge, and removing one only tombstones
// the owner's record.
type FriendService struct {
	friendships repositories.IFriendshipRepository
	users       repositories.IUserRepository
	now         Clock
}

func NewFriendService(friendships repositories.IFriendshipRepository, users repositories.IUserRepository, now Clock) *FriendService {
	if now == nil {
		now = time.Now
	}
	return &FriendService{friendships: friendships, users: users, now: now}
}

// ListFriends returns the owner's active friendships, each resolved with the
// friend's public profile for the contact list.
func (s *FriendService) ListFriends(ownerID uuid.UUID, limit *int) ([]domain.FriendshipWithProfile, error) {
	friendships, err := s.friendships.AllForOwner(ownerID, limit)
	if err != nil {
		return nil, err
	}

	resolved := make([]domain.FriendshipWithProfile, 0, len(friendships))
	for _, friendship := range friendships {
		friend, err := s.users.GetUserByID(friendship.FriendUserID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, domain.FriendshipWithProfile{
			Friendship: friendship,
			Friend:     friend.Profile(),
		})
	}
	return resolved, nil
}

// AddFriend inserts a directed friendship. Duplicate detection is the
// repository's exists-check inside the insert transaction, not a storage
// constraint.
func (s *FriendService) AddFriend(ownerID, friendUserID uuid.UUID) (domain.Friendship, error) {
	if ownerID == friendUserID {
		return domain.Friendship{}, errors.ErrSelfFriend
	}
	exists, err := s.users.Exists(friendUserID)
	if err != nil {
		return domain.Friendship{}, err
	}
	if !exists {
		return domain.Friendship{}, errors.ErrInvalidRecipient
	}
	return s.friendships.Create(ownerID, friendUserID, s.now().UTC())
}

// RemoveFriend tombstones the friendship. ErrNotFound when no active record
// owned by the caller matches.
func (s *FriendService) RemoveFriend(ownerID, friendshipID uuid.UUID) error {
	return s.friendships.SoftDelete(ownerID, friendshipID, s.now().UTC())
}
