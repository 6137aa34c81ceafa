package disk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FoodStore/internal/storage"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := New(dir)
	require.NoError(t, err)
	return s, dir
}

func TestStorage_UploadAndServe(t *testing.T) {
	s, dir := newTestStorage(t)
	ctx := context.Background()

	res, err := s.Upload(ctx, &storage.UploadInput{Key: "amla.png", ContentType: "image/png", Data: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "amla.png", res.Key)
	assert.Equal(t, "/images/amla.png", res.URL)

	data, err := os.ReadFile(filepath.Join(dir, "amla.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	srv := httptest.NewServer(http.StripPrefix(URLPrefix, s.Handler()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/images/amla.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", string(body))

	resp, err = http.Get(srv.URL + "/images/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStorage_UploadRejectsTraversal(t *testing.T) {
	s, _ := newTestStorage(t)

	_, err := s.Upload(context.Background(), &storage.UploadInput{Key: "../evil.png", Data: strings.NewReader("x")})
	assert.True(t, errors.Is(err, storage.ErrInvalidKey))
}

func TestStorage_UploadReadError(t *testing.T) {
	s, dir := newTestStorage(t)

	_, err := s.Upload(context.Background(), &storage.UploadInput{Key: "a.png", Data: failingReader{}})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be cleaned up")
}

func TestStorage_Delete(t *testing.T) {
	s, dir := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, &storage.UploadInput{Key: "a.png", Data: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "a.png"))
	_, err = os.Stat(filepath.Join(dir, "a.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, s.Delete(ctx, "a.png"), "deleting a missing file succeeds")
}

func TestStorage_GetURL(t *testing.T) {
	s, _ := newTestStorage(t)

	url, err := s.GetURL(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, "/images/a.png", url)

	_, err = s.GetURL(context.Background(), "a/b.png")
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
