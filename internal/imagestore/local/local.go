package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/placeoffers/internal/imagestore"
)

type LocalImageStore struct {
	basePath string
	baseURL  string
}

// NewLocalImageStore stores images below basePath and addresses them as
// baseURL/<key>.
func NewLocalImageStore(basePath, baseURL string) (*LocalImageStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &LocalImageStore{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalImageStore) Save(ctx context.Context, key, mimeType string, r io.Reader) error {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return &imagestore.StorageError{Op: "Save", Key: key, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return &imagestore.StorageError{Op: "Save", Key: key, Err: err}
	}

	f, err := os.Create(filePath)
	if err != nil {
		return &imagestore.StorageError{Op: "Save", Key: key, Err: fmt.Errorf("failed to create file: %w", err)}
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return &imagestore.StorageError{Op: "Save", Key: key, Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return &imagestore.StorageError{Op: "Save", Key: key, Err: fmt.Errorf("failed to close file: %w", err)}
	}
	return nil
}

func (s *LocalImageStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return nil, "", &imagestore.StorageError{Op: "Get", Key: key, Err: err}
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", &imagestore.StorageError{Op: "Get", Key: key, Err: imagestore.ErrNotFound}
		}
		return nil, "", &imagestore.StorageError{Op: "Get", Key: key, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	return f, imagestore.MediaTypeForExt(filePath), nil
}

func (s *LocalImageStore) Delete(ctx context.Context, key string) error {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return &imagestore.StorageError{Op: "Delete", Key: key, Err: err}
	}

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &imagestore.StorageError{Op: "Delete", Key: key, Err: imagestore.ErrNotFound}
		}
		return &imagestore.StorageError{Op: "Delete", Key: key, Err: fmt.Errorf("failed to delete file: %w", err)}
	}
	return nil
}

func (s *LocalImageStore) URL(ctx context.Context, key string) (string, error) {
	if err := imagestore.ValidateKey(key); err != nil {
		return "", &imagestore.StorageError{Op: "URL", Key: key, Err: err}
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalImageStore) KeyForURL(rawURL string) (string, bool) {
	return imagestore.KeyUnderBase(s.baseURL, rawURL)
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (s *LocalImageStore) safeJoin(key string) (string, error) {
	if err := imagestore.ValidateKey(key); err != nil {
		return "", err
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", imagestore.ErrInvalidKey
	}
	return absPath, nil
}
