// Package imagestore keeps locally captured meal photos and hands out the
// opaque references persisted in the ledger's foodImage column.
package imagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/chanikarn/mealrecord/internal/errors"
)

// allowedExtensions mirrors the image types the capture flow accepts.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".heif": true,
}

// Store copies photos into a local uploads directory.
type Store struct {
	dir string
}

// New creates a Store rooted at <dataDir>/uploads.
func New(dataDir string) *Store {
	return &Store{dir: filepath.Join(dataDir, "uploads")}
}

// Put copies the file at srcPath into the store and returns the opaque
// reference to persist. File names never collide: each stored photo gets a
// fresh UUID.
func (s *Store) Put(srcPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if !allowedExtensions[ext] {
		return "", apperrors.New(apperrors.ErrInvalid, "unsupported image type "+ext)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to create uploads directory", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInvalid, "failed to open source image", err)
	}
	defer src.Close()

	ref := fmt.Sprintf("meal_%s%s", uuid.New().String(), ext)
	dst, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to create stored image", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", apperrors.Wrap(apperrors.ErrStorageUnavailable, "failed to copy image", err)
	}
	return ref, nil
}

// Resolve maps a stored reference back to an absolute path.
func (s *Store) Resolve(ref string) string {
	return filepath.Join(s.dir, ref)
}

// Remove deletes a stored photo. Removing an absent reference is a no-op.
func (s *Store) Remove(ref string) error {
	err := os.Remove(s.Resolve(ref))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
