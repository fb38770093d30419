//go:generate go run go.uber.org/mock/mockgen -source=image.go -destination=../mocks/mock_image_repository.go -package=mocks
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

type IImageRepository interface {
	Create(image domain.Image) error
	Find(id uuid.UUID) (domain.Image, error)
	AllForOwner(ownerID uuid.UUID) ([]domain.Image, error)
	SoftDelete(id uuid.UUID, at time.Time) error
}

// ImageRepository stores image metadata rows. It is purely referential: the
// blob behind Locator is never touched here.
//
//	image:{id}                              -> record
//	userimage:{ownerID}:{paddedNanos}:{id}  -> id
type ImageRepository struct {
	db *badger.DB
}

func NewImageRepository(db *badger.DB) ImageRepository {
	return ImageRepository{db: db}
}

type diskImage struct {
	ID        string `json:"id"`
	OwnerID   string `json:"user_id"`
	Locator   string `json:"path"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size"`
	Width     *int   `json:"width,omitempty"`
	Height    *int   `json:"height,omitempty"`
	CreatedAt int64  `json:"created_at"`
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

func imageKey(id uuid.UUID) []byte {
	return []byte("image:" + id.String())
}

func userImageKey(image domain.Image) []byte {
	return []byte(fmt.Sprintf("userimage:%s:%019d:%s",
		image.OwnerID, image.CreatedAt.UnixNano(), image.ID))
}

func (r ImageRepository) Create(image domain.Image) error {
	if image.Locator == "" {
		return errors.ErrEmptyLocator
	}
	data, err := json.Marshal(fromImage(image))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(imageKey(image.ID), data); err != nil {
			return err
		}
		return txn.Set(userImageKey(image), []byte(image.ID.String()))
	})
}

func (r ImageRepository) Find(id uuid.UUID) (domain.Image, error) {
	var image domain.Image
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		image, err = loadImage(txn, id)
		return err
	})
	if err != nil {
		return domain.Image{}, err
	}
	if image.Deleted() {
		return domain.Image{}, errors.ErrNotFound
	}
	return image, nil
}

// AllForOwner returns the owner's active images in upload order.
func (r ImageRepository) AllForOwner(ownerID uuid.UUID) ([]domain.Image, error) {
	var images []domain.Image
	prefix := []byte(fmt.Sprintf("userimage:%s:", ownerID))

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			idBytes, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(string(idBytes))
			if err != nil {
				return err
			}
			image, err := loadImage(txn, id)
			if err != nil {
				return err
			}
			if image.Deleted() {
				continue
			}
			images = append(images, image)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// SoftDelete tombstones the metadata row only. File deletion is out of scope
// and must never happen from here.
func (r ImageRepository) SoftDelete(id uuid.UUID, at time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		image, err := loadImage(txn, id)
		if err != nil {
			return err
		}
		if image.Deleted() {
			return errors.ErrNotFound
		}
		image.DeletedAt = &at
		data, err := json.Marshal(fromImage(image))
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(imageKey(id), data)
	})
}

func loadImage(txn *badger.Txn, id uuid.UUID) (domain.Image, error) {
	item, err := txn.Get(imageKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.Image{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Image{}, err
	}
	var disk diskImage
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	})
	if err != nil {
		return domain.Image{}, err
	}
	return toImage(disk)
}

func fromImage(i domain.Image) diskImage {
	disk := diskImage{
		ID:        i.ID.String(),
		OwnerID:   i.OwnerID.String(),
		Locator:   i.Locator,
		URL:       i.URL,
		MimeType:  i.MimeType,
		SizeBytes: i.SizeBytes,
		Width:     i.Width,
		Height:    i.Height,
		CreatedAt: i.CreatedAt.UnixNano(),
	}
	if i.DeletedAt != nil {
		n := i.DeletedAt.UnixNano()
		disk.DeletedAt = &n
	}
	return disk
}

func toImage(disk diskImage) (domain.Image, error) {
	id, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Image{}, err
	}
	ownerID, err := uuid.Parse(disk.OwnerID)
	if err != nil {
		return domain.Image{}, err
	}
	image := domain.Image{
		ID:        id,
		OwnerID:   ownerID,
		Locator:   disk.Locator,
		URL:       disk.URL,
		MimeType:  disk.MimeType,
		SizeBytes: disk.SizeBytes,
		Width:     disk.Width,
		Height:    disk.Height,
		CreatedAt: time.Unix(0, disk.CreatedAt).UTC(),
	}
	if disk.DeletedAt != nil {
		t := time.Unix(0, *disk.DeletedAt).UTC()
		image.DeletedAt = &t
	}
	return image, nil
}
