// FilePath: internal/repository/photos/photos.storage.go
package photos

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/animalhaven/feederhub/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultMaxFileSize = 10 * 1024 * 1024
	defaultPermissions = 0755
	imageFileExtension = ".jpg"
	defaultDateFormat  = "20060102_150405"
)

// Config holds configuration for the photo content store
type Config struct {
	BasePath    string
	MaxFileSize int64
}

// Store writes feeding photos to disk and hands back the relative path that
// gets patched onto the matching feeding event.
type Store struct {
	config Config
}

// NewStore creates a new photo store rooted at the configured base path
func NewStore(config Config) (*Store, error) {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = defaultMaxFileSize
	}
	if err := createDirectoryIfNotExists(config.BasePath); err != nil {
		return nil, err
	}
	return &Store{config: config}, nil
}

// Save writes an image payload. The filename carries the correlation token
// and capture sequence when present so uploads stay traceable to their
// feeding; tokenless uploads fall back to a timestamp name.
func (s *Store) Save(ctx context.Context, feedingID string, captureSeq int, data []byte) (string, error) {
	if int64(len(data)) > s.config.MaxFileSize {
		return "", errors.NewValidationError("image exceeds maximum allowed size", nil)
	}
	if len(data) == 0 {
		return "", errors.NewValidationError("empty image payload", nil)
	}

	var filename string
	if feedingID != "" {
		filename = fmt.Sprintf("%s_capture%d%s", feedingID, captureSeq, imageFileExtension)
	} else {
		filename = time.Now().Format(defaultDateFormat) + imageFileExtension
	}

	fullPath := filepath.Join(s.config.BasePath, filename)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", errors.NewInternalError("failed to write image file", err)
	}

	nuts.L.Infof("[PhotoStore] Stored photo: %s (%d bytes)", filename, len(data))
	return "/uploads/" + filename, nil
}

// Stream copies a stored photo to w. relPath is the path previously returned
// by Save.
func (s *Store) Stream(ctx context.Context, relPath string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.config.BasePath, filepath.Base(relPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("photo not found", err)
		}
		return errors.NewInternalError("failed to open photo", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return errors.NewInternalError("failed to stream photo", err)
	}
	return nil
}

// DeleteOlderThan removes stored photos last modified before the cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, before time.Time) error {
	var deletedCount int
	err := filepath.Walk(s.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if info.ModTime().Before(before) {
			if err := os.Remove(path); err != nil {
				nuts.L.Errorf("[PhotoStore] Failed to delete old photo %s: %v", path, err)
				return nil
			}
			deletedCount++
		}
		return nil
	})

	if err != nil {
		return errors.NewInternalError("failed to delete old photos", err)
	}

	nuts.L.Infof("[PhotoStore] Deleted %d photos older than %v", deletedCount, before)
	return nil
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultPermissions)
		if err != nil {
			return errors.NewInternalError("failed to create directory", err)
		}
	}
	return nil
}
