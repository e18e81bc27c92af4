package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"discdb/internal/config"
)

// Content types used for stored objects.
const (
	ContentTypeLog  = "text/plain; charset=utf-8"
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
)

// ErrExists reports a Save against a key that is already taken.
var ErrExists = errors.New("blob already exists")

// Store persists opaque objects by key.
type Store interface {
	Save(ctx context.Context, data []byte, key, contentType string) error
	Open(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// LogKey returns a fresh key for a raw log of a disc.
func LogKey(externalID string, discIndex int) string {
	return path.Join("contributions", externalID, "discs", fmt.Sprint(discIndex), uuid.NewString()+".log")
}

// ImageKey returns a fresh key for a release image. side is "front" or
// "back"; contentType selects the extension.
func ImageKey(externalID, side, contentType string) string {
	return path.Join("contributions", externalID, "images", side+"-"+uuid.NewString()+ImageExtension(contentType))
}

// ImageExtension maps an image content type to its file extension.
func ImageExtension(contentType string) string {
	switch contentType {
	case ContentTypePNG:
		return ".png"
	case ContentTypeWebP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// ValidateKey rejects keys that could escape the store root.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("blob key is empty")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("blob key %q must be relative", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("blob key %q has an invalid segment", key)
		}
	}
	return nil
}

// New opens the store selected by cfg.Blob.Backend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Blob.Backend {
	case config.BlobBackendFile:
		return NewFileStore(cfg.Blob.Dir)
	case config.BlobBackendS3:
		s3 := cfg.Blob.S3
		return NewS3Store(S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("blob backend %q is not supported", cfg.Blob.Backend)
	}
}
