package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/utafrali/FoodStore/internal/storage"
)

// URLPrefix is the path the API serves disk images under.
const URLPrefix = "/images/"

// Storage implements storage.Storage on a local directory.
type Storage struct {
	dir string
}

// New creates the directory if needed and returns a disk storage rooted at it.
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// Upload writes the file through a temp file and renames it into place.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	key, err := storage.CleanKey(input.Key)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, input.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return nil, fmt.Errorf("store %s: %w", key, err)
	}

	return &storage.UploadResult{Key: key, URL: URLPrefix + key}, nil
}

// Delete removes the file. A missing file is not an error.
func (s *Storage) Delete(_ context.Context, key string) error {
	key, err := storage.CleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// GetURL returns the path the file is served under.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	key, err := storage.CleanKey(key)
	if err != nil {
		return "", err
	}
	return URLPrefix + key, nil
}

// Handler serves stored files. Mount it with http.StripPrefix(URLPrefix).
func (s *Storage) Handler() http.Handler {
	return http.FileServer(noDirFS{http.Dir(s.dir)})
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
