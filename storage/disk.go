// Package storage is the blob store collaborator. The messaging core only
// ever sees opaque locators and URLs; nothing in this repository deletes a
// blob once written.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"ghostsnap/errors"
)

type BlobStore interface {
	Store(data []byte, extension string) (locator string, err error)
	URLFor(locator string) string
}

// DiskStore writes content-addressed files below a media directory. The
// locator is the relative path, stable across restarts, and identical
// payloads dedupe onto the same file.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	return &DiskStore{dir: dir, baseURL: baseURL}, nil
}

func (s *DiskStore) Store(data []byte, extension string) (string, error) {
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:])
	if extension != "" {
		name += extension
	}
	locator := filepath.Join("images", name)

	path := filepath.Join(s.dir, locator)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	return locator, nil
}

func (s *DiskStore) URLFor(locator string) string {
	return s.baseURL + "/" + filepath.ToSlash(locator)
}
