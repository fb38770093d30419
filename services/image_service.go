//go:generate go run go.uber.org/mock/mockgen -source=image_service.go -destination=../mocks/mock_image_service.go -package=mocks
package services

import (
	"bytes"
	"image"
	"log/slog"
	"time"

	// Register the decoders the upload path probes for dimensions.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"ghostsnap/domain"
	"ghostsnap/errors"
	"ghostsnap/repositories"
	"ghostsnap/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type IImageService interface {
	Upload(ownerID uuid.UUID, data []byte) (domain.Image, error)
	Register(ownerID uuid.UUID, locator, url, mimeType string, sizeBytes int64, width, height *int) (domain.Image, error)
	Get(id uuid.UUID) (domain.Image, error)
	ListForOwner(ownerID uuid.UUID) ([]domain.Image, error)
	SoftDelete(id uuid.UUID) error
}

// ImageService is the image registry plus the thin upload path in front of
// the blob store. Metadata is trusted as recorded; the registry never
// inspects blobs after upload and never deletes them.
type ImageService struct {
	images repositories.IImageRepository
	blobs  storage.BlobStore
	log    *slog.Logger
	now    Clock
}

func NewImageService(images repositories.IImageRepository, blobs storage.BlobStore, log *slog.Logger, now Clock) *ImageService {
	if now == nil {
		now = time.Now
	}
	return &ImageService{images: images, blobs: blobs, log: log, now: now}
}

// Upload stores the payload in the blob store, sniffs its content type from
// the bytes rather than trusting a client header, probes dimensions when the
// payload decodes as an image, and records the metadata row.
func (s *ImageService) Upload(ownerID uuid.UUID, data []byte) (domain.Image, error) {
	mtype := mimetype.Detect(data)

	locator, err := s.blobs.Store(data, mtype.Extension())
	if err != nil {
		return domain.Image{}, err
	}

	var width, height *int
	if config, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		width, height = &config.Width, &config.Height
	}

	return s.Register(ownerID, locator, s.blobs.URLFor(locator),
		mtype.String(), int64(len(data)), width, height)
}

// Register is the pure recording operation: no validation beyond requiring a
// locator.
func (s *ImageService) Register(ownerID uuid.UUID, locator, url, mimeType string, sizeBytes int64, width, height *int) (domain.Image, error) {
	if locator == "" {
		return domain.Image{}, errors.ErrEmptyLocator
	}
	img := domain.Image{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Locator:   locator,
		URL:       url,
		MimeType:  mimeType,
		SizeBytes: sizeBytes,
		Width:     width,
		Height:    height,
		CreatedAt: s.now().UTC(),
	}
	if err := s.images.Create(img); err != nil {
		return domain.Image{}, err
	}
	s.log.Debug("Image registered", "image_id", img.ID, "owner", ownerID, "mime", mimeType)
	return img, nil
}

func (s *ImageService) Get(id uuid.UUID) (domain.Image, error) {
	return s.images.Find(id)
}

func (s *ImageService) ListForOwner(ownerID uuid.UUID) ([]domain.Image, error) {
	return s.images.AllForOwner(ownerID)
}

// SoftDelete tombstones the metadata row; the blob stays where it is.
func (s *ImageService) SoftDelete(id uuid.UUID) error {
	return s.images.SoftDelete(id, s.now().UTC())
}
