package receipts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes receipts under a local directory. The API server serves
// the directory at /receipts/, so URLs are baseURL + "/receipts/" + name.
type DiskStore struct {
	dir     string
	baseURL string
	maxSize int64
	now     func() time.Time
}

func NewDiskStore(dir, baseURL string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipt directory: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
		now:     time.Now,
	}, nil
}

// Dir returns the backing directory, for the API server's file handler.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, ownerID, contentType string, size int64, body io.Reader) (string, error) {
	name, err := objectName(ownerID, contentType, size, s.maxSize, s.now())
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create owner directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}

	// LimitReader guards against clients lying about size.
	written, err := io.Copy(f, io.LimitReader(body, s.maxSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", fmt.Errorf("%w: body larger than declared", ErrTooLarge)
	}

	slog.InfoContext(ctx, "Receipt stored",
		"backend", "disk",
		"user_id", ownerID,
		"receipt", name,
		"bytes", written)

	return s.baseURL + "/receipts/" + name, nil
}

func (s *DiskStore) Delete(ctx context.Context, ownerID, name string) error {
	// Names are owner-prefixed; refuse anything that escapes the owner's
	// directory.
	if !strings.HasPrefix(name, ownerID+"/") || strings.Contains(name, "..") {
		return fmt.Errorf("receipt %q does not belong to owner", name)
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(name))); err != nil {
		return fmt.Errorf("remove receipt file: %w", err)
	}
	return nil
}
