// Package memory keeps uploaded images in process memory. It backs tests
// and STORAGE_BACKEND=memory runs where nothing may touch the disk.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/FoodStore/internal/storage"
	apperrors "github.com/utafrali/FoodStore/pkg/errors"
)

type object struct {
	contentType string
	data        []byte
	stored      time.Time
}

// Storage is a storage.Storage over a map of keys to image bytes.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]object
	baseURL string
}

// New returns an empty store whose URLs are baseURL + "/images/<key>".
func New(baseURL string) *Storage {
	return &Storage{objects: map[string]object{}, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *Storage) url(key string) string {
	return s.baseURL + "/images/" + key
}

// Upload reads the whole image into memory, replacing any object under the
// same key.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	key, err := storage.CleanKey(input.Key)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", key, err)
	}

	s.mu.Lock()
	s.objects[key] = object{contentType: input.ContentType, data: data, stored: time.Now()}
	s.mu.Unlock()
	return &storage.UploadResult{Key: key, URL: s.url(key)}, nil
}

// Delete drops key. A missing key is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// GetURL returns the URL of a stored key, or a NotFound AppError.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	if !s.Has(key) {
		return "", apperrors.NotFound("image", key)
	}
	return s.url(key), nil
}

// Has reports whether key is stored.
func (s *Storage) Has(key string) bool {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	return ok
}

// Handler serves GET /<key> straight from memory.
func (s *Storage) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := storage.CleanKey(strings.TrimPrefix(r.URL.Path, "/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		s.mu.RLock()
		obj, ok := s.objects[key]
		s.mu.RUnlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		if obj.contentType != "" {
			w.Header().Set("Content-Type", obj.contentType)
		}
		http.ServeContent(w, r, key, obj.stored, bytes.NewReader(obj.data))
	})
}
