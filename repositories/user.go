//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"ghostsnap/domain"
	"ghostsnap/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword, handle, displayName string) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUserByID(id uuid.UUID) (domain.User, error)
	Exists(id uuid.UUID) (bool, error)
}

// UserRepository persists accounts. The record lives under the id; email and
// handle are unique pointers checked inside the insert transaction.
//
//	user:id:{id}         -> record
//	user:email:{email}   -> id
//	user:handle:{handle} -> id
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

type diskUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Handle       string `json:"handle"`
	DisplayName  string `json:"name"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func (r *UserRepository) CreateUser(email, hashedPassword, handle, displayName string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.New(),
		Email:        email,
		Handle:       handle,
		DisplayName:  displayName,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte("user:email:" + email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if _, err := txn.Get([]byte("user:handle:" + handle)); err == nil {
			return errors.ErrHandleTaken
		}
		if err := txn.Set([]byte("user:id:"+user.ID.String()), data); err != nil {
			return err
		}
		if err := txn.Set([]byte("user:email:"+email), []byte(user.ID.String())); err != nil {
			return err
		}
		return txn.Set([]byte("user:handle:"+handle), []byte(user.ID.String()))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:email:" + email))
		if err == badger.ErrKeyNotFound {
			return errors.ErrNotFound
		}
		if err != nil {
			return err
		}
		idBytes, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(string(idBytes))
		if err != nil {
			return err
		}
		user, err = loadUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(id uuid.UUID) (domain.User, error) {
	var user domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = loadUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Exists reports whether a user id resolves to an account. The message
// engine uses this to validate recipients without pulling the full record.
func (r *UserRepository) Exists(id uuid.UUID) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("user:id:" + id.String()))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func loadUser(txn *badger.Txn, id uuid.UUID) (domain.User, error) {
	item, err := txn.Get([]byte("user:id:" + id.String()))
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	var disk diskUser
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(disk)
}

func fromUser(u domain.User) diskUser {
	return diskUser{
		ID:           u.ID.String(),
		Email:        u.Email,
		Handle:       u.Handle,
		DisplayName:  u.DisplayName,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UnixNano(),
	}
}

func toUser(disk diskUser) (domain.User, error) {
	id, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           id,
		Email:        disk.Email,
		Handle:       disk.Handle,
		DisplayName:  disk.DisplayName,
		PasswordHash: disk.PasswordHash,
		CreatedAt:    time.Unix(0, disk.CreatedAt).UTC(),
	}, nil
}
