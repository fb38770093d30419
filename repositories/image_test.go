package repositories

import (
	"testing"
	"time"

	"ghostsnap/domain"
	"ghostsnap/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testImage(owner uuid.UUID, locator string, at time.Time) domain.Image {
	return domain.Image{
		ID:        uuid.New(),
		OwnerID:   owner,
		Locator:   locator,
		URL:       "/media/" + locator,
		MimeType:  "image/png",
		SizeBytes: 1024,
		CreatedAt: at,
	}
}

func Test_Create_And_Find_Image(t *testing.T) {
	req := require.New(t)
	repository := NewImageRepository(openTestDB(t))

	owner := uuid.New()
	image := testImage(owner, "images/abc123.png", time.Now().UTC())
	req.NoError(repository.Create(image))

	fetched, err := repository.Find(image.ID)
	req.NoError(err)
	req.Equal(image.ID, fetched.ID)
	req.Equal(image.Locator, fetched.Locator)
	req.Equal(image.MimeType, fetched.MimeType)
	req.True(fetched.OwnedBy(owner))
}

func Test_Create_Image_Without_Locator(t *testing.T) {
	req := require.New(t)
	repository := NewImageRepository(openTestDB(t))

	image := testImage(uuid.New(), "", time.Now().UTC())
	req.ErrorIs(repository.Create(image), errors.ErrEmptyLocator)
}

func Test_List_Images_In_Upload_Order(t *testing.T) {
	req := require.New(t)
	repository := NewImageRepository(openTestDB(t))

	owner := uuid.New()
	at := time.Now().UTC()
	first := testImage(owner, "images/first.png", at)
	second := testImage(owner, "images/second.png", at.Add(1*time.Minute))
	req.NoError(repository.Create(second))
	req.NoError(repository.Create(first))
	req.NoError(repository.Create(testImage(uuid.New(), "images/other.png", at)))

	images, err := repository.AllForOwner(owner)
	req.NoError(err)
	req.Len(images, 2)
	req.Equal("images/first.png", images[0].Locator)
	req.Equal("images/second.png", images[1].Locator)
}

func Test_SoftDelete_Image(t *testing.T) {
	req := require.New(t)
	repository := NewImageRepository(openTestDB(t))

	owner := uuid.New()
	image := testImage(owner, "images/gone.png", time.Now().UTC())
	req.NoError(repository.Create(image))
	req.NoError(repository.SoftDelete(image.ID, time.Now().UTC()))

	_, err := repository.Find(image.ID)
	req.ErrorIs(err, errors.ErrNotFound)

	images, err := repository.AllForOwner(owner)
	req.NoError(err)
	req.Empty(images)
}
