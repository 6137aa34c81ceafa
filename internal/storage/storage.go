package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that could escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage defines the interface for image storage operations.
type Storage interface {
	// Upload stores a file and returns the result with key and URL.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)

	// Delete removes a file by its key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// GetURL returns the public URL for the given key.
	GetURL(ctx context.Context, key string) (string, error)
}

// UploadInput holds the parameters for uploading a file.
type UploadInput struct {
	Key         string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadResult holds the result of a successful upload.
type UploadResult struct {
	Key string
	URL string
}

// CleanKey validates a flat object key.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || key != path.Base(key) || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

// RedirectHandler serves GET /<key> by redirecting to the storage URL. It is
// used for backends whose objects are not on the local disk.
func RedirectHandler(s Storage) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := CleanKey(strings.TrimPrefix(r.URL.Path, "/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		url, err := s.GetURL(r.Context(), key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	})
}
