// Package receipts stores uploaded receipt images and hands back public URLs
// to record on transactions.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"spendify/internal/config"
)

var (
	ErrUnsupportedType = errors.New("unsupported receipt content type")
	ErrTooLarge        = errors.New("receipt exceeds the size limit")
)

// extensions maps the accepted content types to their stored file extension.
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
}

// Store persists receipt images. Save returns the public URL recorded on the
// owning transaction.
type Store interface {
	Save(ctx context.Context, ownerID, contentType string, size int64, body io.Reader) (string, error)
	Delete(ctx context.Context, ownerID, name string) error
}

// NewStore builds the configured backend.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ReceiptBackend {
	case "disk":
		return NewDiskStore(cfg.ReceiptDir, cfg.ReceiptBaseURL, cfg.MaxReceiptSize)
	case "gcs":
		return NewGCSStore(ctx, cfg.ReceiptBucket, cfg.ReceiptBaseURL, cfg.MaxReceiptSize)
	default:
		return nil, fmt.Errorf("unknown receipt backend %q", cfg.ReceiptBackend)
	}
}

// objectName validates the upload parameters and builds the stored name,
// "<ownerID>/<unix-nanos>.<ext>". Timestamps keep names unique per owner
// without coordination.
func objectName(ownerID, contentType string, size, maxSize int64, now time.Time) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if size > maxSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, size, maxSize)
	}
	return fmt.Sprintf("%s/%d.%s", ownerID, now.UnixNano(), ext), nil
}
