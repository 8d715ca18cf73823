package receipts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
)

// GCSStore writes receipts to a Google Cloud Storage bucket using Application
// Default Credentials. Objects are publicly readable through the bucket's
// standard URL unless a base URL (e.g. a CDN) is configured.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
	maxSize int64
	now     func() time.Time
}

func NewGCSStore(ctx context.Context, bucket, baseURL string, maxSize int64) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
		now:     time.Now,
	}, nil
}

func (s *GCSStore) Save(ctx context.Context, ownerID, contentType string, size int64, body io.Reader) (string, error) {
	name, err := objectName(ownerID, contentType, size, s.maxSize, s.now())
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	written, err := io.Copy(w, io.LimitReader(body, s.maxSize+1))
	if err != nil {
		w.Close()
		return "", fmt.Errorf("copy receipt to GCS writer: %w", err)
	}
	if written > s.maxSize {
		w.Close()
		return "", fmt.Errorf("%w: body larger than declared", ErrTooLarge)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	slog.InfoContext(ctx, "Receipt stored",
		"backend", "gcs",
		"user_id", ownerID,
		"receipt", name,
		"bytes", written)

	return s.baseURL + "/" + name, nil
}

func (s *GCSStore) Delete(ctx context.Context, ownerID, name string) error {
	if !strings.HasPrefix(name, ownerID+"/") {
		return fmt.Errorf("receipt %q does not belong to owner", name)
	}
	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		return fmt.Errorf("delete GCS object: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
