package gcs

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	imgstorage "github.com/utafrali/FoodStore/internal/storage"
)

// fakeGCS answers the JSON API calls the storage makes.
type fakeGCS struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeGCS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost:
		_, _ = io.WriteString(w, `{"bucket":"food-images","name":"amla.png","size":"9"}`)
	case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/missing.png"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"No such object"}}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newTestStorage(t *testing.T, publicURL string) (*Storage, *fakeGCS) {
	t.Helper()
	fake := &fakeGCS{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), "food-images", publicURL,
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fake
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), " ", "")
	assert.Error(t, err)
}

func TestStorage_Upload(t *testing.T) {
	s, fake := newTestStorage(t, "")

	res, err := s.Upload(context.Background(), &imgstorage.UploadInput{
		Key:         "amla.png",
		ContentType: "image/png",
		Data:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "amla.png", res.Key)
	assert.Equal(t, "https://storage.googleapis.com/food-images/amla.png", res.URL)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.requests, 1)
	assert.Contains(t, fake.requests[0], "POST /upload/storage/v1/b/food-images/o")
	assert.Contains(t, fake.bodies[0], "png-bytes")
}

func TestStorage_UploadInvalidKey(t *testing.T) {
	s, fake := newTestStorage(t, "")

	_, err := s.Upload(context.Background(), &imgstorage.UploadInput{Key: "../x.png", Data: strings.NewReader("x")})
	assert.ErrorIs(t, err, imgstorage.ErrInvalidKey)
	assert.Empty(t, fake.requests)
}

func TestStorage_Delete(t *testing.T) {
	s, fake := newTestStorage(t, "")

	require.NoError(t, s.Delete(context.Background(), "amla.png"))
	assert.NoError(t, s.Delete(context.Background(), "missing.png"), "missing objects are ignored")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{
		"DELETE /storage/v1/b/food-images/o/amla.png",
		"DELETE /storage/v1/b/food-images/o/missing.png",
	}, fake.requests)
}

func TestStorage_GetURL(t *testing.T) {
	s, _ := newTestStorage(t, "https://cdn.example.com/food/")

	url, err := s.GetURL(context.Background(), "dried figs.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/food/dried%20figs.png", url)
}
