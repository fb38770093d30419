//go:generate go run go.uber.org/mock/mockgen -source=friendship.go -destination=../mocks/mock_friendship_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"ghostsnap/domain"
	"ghostsnap/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IFriendshipRepository interface {
	Create(ownerID, friendUserID uuid.UUID, at time.Time) (domain.Friendship, error)
	FindForOwner(ownerID, friendshipID uuid.UUID) (domain.Friendship, error)
	AllForOwner(ownerID uuid.UUID, limit *int) ([]domain.Friendship, error)
	SoftDelete(ownerID, friendshipID uuid.UUID, at time.Time) error
}

// FriendshipRepository stores directed contact entries.
//
//	friendship:{ownerID}:{friendshipID} -> record
//	friendpair:{ownerID}:{friendUserID} -> friendshipID (active pairs only)
//
// The pair pointer is what makes duplicates logically impossible: Create
// checks it inside the same transaction that inserts, and SoftDelete removes
// it so the pair can be re-added later.
type FriendshipRepository struct {
	db *badger.DB
}

func NewFriendshipRepository(db *badger.DB) FriendshipRepository {
	return FriendshipRepository{db: db}
}

type diskFriendship struct {
	ID           string `json:"id"`
	OwnerID      string `json:"user_id"`
	FriendUserID string `json:"friend_user_id"`
	CreatedAt    int64  `json:"created_at"`
	DeletedAt    *int64 `json:"deleted_at,omitempty"`
}

func friendshipKey(ownerID, friendshipID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("friendship:%s:%s", ownerID, friendshipID))
}

func friendPairKey(ownerID, friendUserID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("friendpair:%s:%s", ownerID, friendUserID))
}

// Create inserts a friendship unless an active one exists for the exact
// ordered pair.
func (r FriendshipRepository) Create(ownerID, friendUserID uuid.UUID, at time.Time) (domain.Friendship, error) {
	friendship := domain.Friendship{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		FriendUserID: friendUserID,
		CreatedAt:    at,
	}
	data, err := json.Marshal(fromFriendship(friendship))
	if err != nil {
		return domain.Friendship{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(friendPairKey(ownerID, friendUserID)); err == nil {
			return errors.ErrAlreadyFriends
		}
		if err := txn.Set(friendshipKey(ownerID, friendship.ID), data); err != nil {
			return err
		}
		return txn.Set(friendPairKey(ownerID, friendUserID), []byte(friendship.ID.String()))
	})
	if err != nil {
		return domain.Friendship{}, err
	}
	return friendship, nil
}

// FindForOwner loads an active friendship owned by ownerID.
func (r FriendshipRepository) FindForOwner(ownerID, friendshipID uuid.UUID) (domain.Friendship, error) {
	var friendship domain.Friendship
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		friendship, err = loadFriendship(txn, ownerID, friendshipID)
		return err
	})
	if err != nil {
		return domain.Friendship{}, err
	}
	if friendship.Deleted() {
		return domain.Friendship{}, errors.ErrNotFound
	}
	return friendship, nil
}

// AllForOwner returns active friendships ordered by creation time, capped at
// limit when one is supplied.
func (r FriendshipRepository) AllForOwner(ownerID uuid.UUID, limit *int) ([]domain.Friendship, error) {
	var friendships []domain.Friendship
	prefix := []byte(fmt.Sprintf("friendship:%s:", ownerID))

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk diskFriendship
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			friendship, err := toFriendship(disk)
			if err != nil {
				return err
			}
			if friendship.Deleted() {
				continue
			}
			friendships = append(friendships, friendship)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(friendships, func(i, j int) bool {
		return friendships[i].CreatedAt.Before(friendships[j].CreatedAt)
	})
	if limit != nil && len(friendships) > *limit {
		friendships = friendships[:*limit]
	}
	return friendships, nil
}

// SoftDelete tombstones the friendship and frees the pair pointer so the
// owner can add the same friend again later.
func (r FriendshipRepository) SoftDelete(ownerID, friendshipID uuid.UUID, at time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		friendship, err := loadFriendship(txn, ownerID, friendshipID)
		if err != nil {
			return err
		}
		if friendship.Deleted() {
			return errors.ErrNotFound
		}
		friendship.DeletedAt = &at
		data, err := json.Marshal(fromFriendship(friendship))
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		if err := txn.Set(friendshipKey(ownerID, friendshipID), data); err != nil {
			return err
		}
		return txn.Delete(friendPairKey(ownerID, friendship.FriendUserID))
	})
}

func loadFriendship(txn *badger.Txn, ownerID, friendshipID uuid.UUID) (domain.Friendship, error) {
	item, err := txn.Get(friendshipKey(ownerID, friendshipID))
	if err == badger.ErrKeyNotFound {
		return domain.Friendship{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Friendship{}, err
	}
	var disk diskFriendship
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	})
	if err != nil {
		return domain.Friendship{}, err
	}
	return toFriendship(disk)
}

func fromFriendship(f domain.Friendship) diskFriendship {
	disk := diskFriendship{
		ID:           f.ID.String(),
		OwnerID:      f.OwnerID.String(),
		FriendUserID: f.FriendUserID.String(),
		CreatedAt:    f.CreatedAt.UnixNano(),
	}
	if f.DeletedAt != nil {
		n := f.DeletedAt.UnixNano()
		disk.DeletedAt = &n
	}
	return disk
}

func toFriendship(disk diskFriendship) (domain.Friendship, error) {
	id, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Friendship{}, err
	}
	ownerID, err := uuid.Parse(disk.OwnerID)
	if err != nil {
		return domain.Friendship{}, err
	}
	friendUserID, err := uuid.Parse(disk.FriendUserID)
	if err != nil {
		return domain.Friendship{}, err
	}
	friendship := domain.Friendship{
		ID:           id,
		OwnerID:      ownerID,
		FriendUserID: friendUserID,
		CreatedAt:    time.Unix(0, disk.CreatedAt).UTC(),
	}
	if disk.DeletedAt != nil {
		t := time.Unix(0, *disk.DeletedAt).UTC()
		friendship.DeletedAt = &t
	}
	return friendship, nil
}
