package storefront

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/pkg/httpclient"
	"github.com/utafrali/FoodStore/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// sampleCatalog has A with two packing sizes, B with a base price only and
// C with nothing resolvable.
const sampleCatalog = `[
	{"_id":"A","name":"Amla Candy","category":"Amla","inStock":true,
	 "packingSizes":[{"size":"100g","price":50},{"size":"250g","price":{"$numberInt":"110"}}]},
	{"_id":"B","name":"Hajmola","category":"Churan","price":{"$numberDouble":"30.5"},"inStock":true},
	{"_id":"C","name":"Mystery","category":"candy","inStock":false}
]`

// fakeBackend is an in-memory food API.
type fakeBackend struct {
	mu sync.Mutex

	listBody   string
	listStatus int

	carts      map[string]domain.CartItems
	cartStatus int
	cartGets   int
	requests   []string

	users map[string]string

	// cartHook runs before a cart mutation answers; it may block.
	cartHook func(itemID string)
	// snapshot overrides the cartData returned for an itemId.
	snapshot map[string]domain.CartItems
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		listBody:   sampleCatalog,
		listStatus: http.StatusOK,
		carts:      map[string]domain.CartItems{},
		cartStatus: http.StatusOK,
		users:      map[string]string{"ana@example.com": "secret-pass"},
		snapshot:   map[string]domain.CartItems{},
	}
}

func (f *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeBackend) cartGetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cartGets
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	switch r.URL.Path {
	case pathFoodList:
		f.mu.Lock()
		status, body := f.listStatus, f.listBody
		f.mu.Unlock()
		if status != http.StatusOK {
			writeEnvelope(w, status, map[string]any{"success": false, "message": "list unavailable"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":`+body+`}`)

	case pathUserLogin:
		var req struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		pw, ok := f.users[req.Email]
		f.mu.Unlock()
		switch {
		case !ok:
			writeEnvelope(w, http.StatusNotFound, map[string]any{"success": false, "message": "User doesn't exist"})
		case pw != req.Password:
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
		default:
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "token": "tok-" + req.Email})
		}

	case pathUserRegister:
		var req struct{ Name, Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		_, exists := f.users[req.Email]
		if !exists {
			f.users[req.Email] = req.Password
		}
		f.mu.Unlock()
		if exists {
			writeEnvelope(w, http.StatusConflict, map[string]any{"success": false, "message": "User already exists"})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "token": "tok-" + req.Email})

	case pathCartGet, pathCartAdd, pathCartRemove:
		f.serveCart(w, r)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBackend) serveCart(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not Authorized Login Again"})
		return
	}

	var req struct {
		ItemID string `json:"itemId"`
	}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	f.mu.Lock()
	if f.cartStatus != http.StatusOK {
		status := f.cartStatus
		f.mu.Unlock()
		writeEnvelope(w, status, map[string]any{"success": false, "message": "cart unavailable"})
		return
	}
	cart, ok := f.carts[token]
	if !ok {
		cart = domain.CartItems{}
		f.carts[token] = cart
	}
	if r.URL.Path == pathCartGet {
		f.cartGets++
	}
	if req.ItemID != "" {
		key, _ := domain.ParseCartKey(req.ItemID)
		if r.URL.Path == pathCartAdd {
			cart.Increment(key)
		} else {
			cart.Decrement(key)
		}
	}
	snap := cart.Clone()
	if override, ok := f.snapshot[req.ItemID]; ok {
		snap = override
	}
	hook := f.cartHook
	f.mu.Unlock()

	if hook != nil && req.ItemID != "" {
		hook(req.ItemID)
	}
	writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "message": "ok", "cartData": snap})
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	hc := httpclient.New(httpclient.DefaultConfig())
	return NewClient(baseURL, hc, logger.Discard())
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
}

func newMemTokens() *memTokens { return &memTokens{values: map[string]string{}} }

func (m *memTokens) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memTokens) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.sets++
	return nil
}

func newTestStore(t *testing.T, backend *fakeBackend, tokens TokenStore) *Store {
	t.Helper()
	srv := backend.server(t)
	return NewStore(newTestClient(t, srv.URL), tokens,
		WithLogger(logger.Discard()),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
}

func domainItems(wire string, qty int) domain.CartItems {
	k, err := domain.ParseCartKey(wire)
	if err != nil {
		panic(err)
	}
	return domain.CartItems{k: qty}
}
