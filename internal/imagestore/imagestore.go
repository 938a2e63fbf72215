// Package imagestore persists uploaded place images and the thumbnails
// derived from them.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store is implemented by the local filesystem and S3 backends.
type Store interface {
	// Save writes r under key. An existing object at key is replaced.
	Save(ctx context.Context, key, mimeType string, r io.Reader) error
	// Get returns the object and its media type. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	// URL returns the address clients use to fetch the object.
	URL(ctx context.Context, key string) (string, error)
	// KeyForURL reverses URL for addresses this store handed out.
	KeyForURL(rawURL string) (string, bool)
}

var (
	ErrNotFound   = errors.New("image not found")
	ErrInvalidKey = errors.New("invalid image key")
)

// StorageError carries the failing operation and key.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("imagestore %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("imagestore %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

const thumbnailPrefix = "thumbnails"

// NewKey returns a fresh key of the form prefix/<uuid><ext>.
func NewKey(prefix, mimeType string) string {
	return path.Join(prefix, uuid.NewString()+ExtForMediaType(mimeType))
}

// ThumbnailKey derives the thumbnail key for an original image key.
// Thumbnails are always JPEG.
func ThumbnailKey(key string) string {
	base := path.Base(key)
	return path.Join(thumbnailPrefix, strings.TrimSuffix(base, path.Ext(base))+".jpg")
}

// ValidateKey rejects empty, absolute and traversing keys.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func ExtForMediaType(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func MediaTypeForExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// KeyUnderBase strips base+"/" from rawURL. It is shared by backends that
// serve objects below a fixed URL.
func KeyUnderBase(base, rawURL string) (string, bool) {
	if base == "" {
		return "", false
	}
	key, ok := strings.CutPrefix(rawURL, strings.TrimSuffix(base, "/")+"/")
	if !ok || ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}
