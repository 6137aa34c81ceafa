package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	imgstorage "github.com/utafrali/FoodStore/internal/storage"
)

// DefaultPublicBaseURL is used when no public base URL is configured.
const DefaultPublicBaseURL = "https://storage.googleapis.com"

// Storage implements storage.Storage on a Google Cloud Storage bucket. The
// bucket is expected to grant public read on its objects.
type Storage struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// New creates a GCS client with opts and returns a storage on bucket.
func New(ctx context.Context, bucket, publicBaseURL string, opts ...option.ClientOption) (*Storage, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gcs: bucket is empty")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = DefaultPublicBaseURL + "/" + bucket
	}
	return &Storage{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Upload streams the file into the bucket in a single request.
func (s *Storage) Upload(ctx context.Context, input *imgstorage.UploadInput) (*imgstorage.UploadResult, error) {
	key, err := imgstorage.CleanKey(input.Key)
	if err != nil {
		return nil, err
	}

	// Cancelling ctx before Close discards a partial upload.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = input.ContentType
	w.CacheControl = "public, max-age=86400"
	w.ChunkSize = 0

	if _, err := io.Copy(w, input.Data); err != nil {
		cancel()
		_ = w.Close()
		return nil, fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs close %s: %w", key, err)
	}

	return &imgstorage.UploadResult{Key: key, URL: s.objectURL(key)}, nil
}

// Delete removes an object. A missing object is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	key, err := imgstorage.CleanKey(key)
	if err != nil {
		return err
	}
	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

// GetURL returns the public URL of key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	key, err := imgstorage.CleanKey(key)
	if err != nil {
		return "", err
	}
	return s.objectURL(key), nil
}

// Close releases the client.
func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) objectURL(key string) string {
	return s.publicBaseURL + "/" + url.PathEscape(key)
}
