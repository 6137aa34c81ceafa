package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/pkg/httpclient"
)

// API paths of the food backend.
const (
	pathFoodList     = "/api/food/list"
	pathFoodAdd      = "/api/food/add"
	pathFoodRemove   = "/api/food/remove"
	pathFoodStock    = "/api/food/update-stock"
	pathCartGet      = "/api/cart/get"
	pathCartAdd      = "/api/cart/add"
	pathCartRemove   = "/api/cart/remove"
	pathUserLogin    = "/api/user/login"
	pathUserRegister = "/api/user/register"
)

const (
	backendService  = "foodapi"
	maxResponseBody = 8 << 20
)

// Envelope is the response body every backend endpoint answers with.
type Envelope struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Data     json.RawMessage   `json:"data"`
	Token    string            `json:"token"`
	CartData *domain.CartItems `json:"cartData"`

	// Status is the HTTP status code of the response.
	Status int `json:"-"`
	// Err describes a non-2xx answer; nil otherwise.
	Err error `json:"-"`
}

// OK reports a 2xx status.
func (e *Envelope) OK() bool {
	return e.Status >= 200 && e.Status < 300
}

// Succeeded reports a 2xx status with the success flag set.
func (e *Envelope) Succeeded() bool {
	return e.OK() && e.Success
}

// Client talks to the food backend. It never retries on its own; retries
// and circuit breaking are properties of the Doer it is given.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	logger  *slog.Logger
}

// NewClient creates a Client for baseURL.
func NewClient(baseURL string, doer httpclient.Doer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  logger,
	}
}

// AddFoodRequest is the multipart payload of a new listing.
type AddFoodRequest struct {
	Name         string
	Description  string
	Category     string
	PackingSizes []domain.PackingSize
	ImageName    string
	Image        io.Reader
}

// ListFoods fetches the catalog. Products are decoded only when the
// envelope reports success.
func (c *Client) ListFoods(ctx context.Context) (*Envelope, []domain.Product, error) {
	env, err := c.call(ctx, http.MethodGet, pathFoodList, "", nil)
	if err != nil {
		return nil, nil, err
	}
	if !env.Succeeded() {
		return env, nil, nil
	}
	products := []domain.Product{}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &products); err != nil {
			return nil, nil, fmt.Errorf("decode food list: %w", err)
		}
	}
	return env, products, nil
}

// AddFood uploads a new listing as multipart/form-data.
func (c *Client) AddFood(ctx context.Context, req AddFoodRequest) (*Envelope, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	sizes, err := json.Marshal(req.PackingSizes)
	if err != nil {
		return nil, fmt.Errorf("encode packing sizes: %w", err)
	}
	for _, f := range [][2]string{
		{"name", req.Name},
		{"description", req.Description},
		{"category", req.Category},
		{"packingSizes", string(sizes)},
	} {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	part, err := mw.CreateFormFile("image", req.ImageName)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, req.Image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return c.send(ctx, http.MethodPost, pathFoodAdd, "", mw.FormDataContentType(), &body)
}

// RemoveFood deletes a listing.
func (c *Client) RemoveFood(ctx context.Context, id string) (*Envelope, error) {
	return c.call(ctx, http.MethodPost, pathFoodRemove, "", map[string]string{"id": id})
}

// UpdateStock sets the stock flag of a listing.
func (c *Client) UpdateStock(ctx context.Context, id string, inStock bool) (*Envelope, error) {
	return c.call(ctx, http.MethodPost, pathFoodStock, "", map[string]any{"id": id, "inStock": inStock})
}

// GetCart fetches the server cart of the token's owner.
func (c *Client) GetCart(ctx context.Context, token string) (*Envelope, error) {
	return c.call(ctx, http.MethodGet, pathCartGet, token, nil)
}

// AddToCart increments key in the server cart.
func (c *Client) AddToCart(ctx context.Context, token string, key domain.CartKey) (*Envelope, error) {
	return c.call(ctx, http.MethodPost, pathCartAdd, token, map[string]string{"itemId": key.String()})
}

// RemoveFromCart decrements key in the server cart.
func (c *Client) RemoveFromCart(ctx context.Context, token string, key domain.CartKey) (*Envelope, error) {
	return c.call(ctx, http.MethodPost, pathCartRemove, token, map[string]string{"itemId": key.String()})
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*Envelope, error) {
	return c.call(ctx, http.MethodPost, pathUserLogin, "", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and returns a token for it.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Envelope, error) {
	return c.call(ctx, http.MethodPost, pathUserRegister, "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) call(ctx context.Context, method, path, token string, payload any) (*Envelope, error) {
	if payload == nil {
		return c.send(ctx, method, path, token, "", nil)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, method, path, token, "application/json", bytes.NewReader(b))
}

// send performs one request and decodes the envelope regardless of status.
// Only transport failures are returned as errors.
func (c *Client) send(ctx context.Context, method, path, token, contentType string, body io.Reader) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	env := &Envelope{}
	if err := json.Unmarshal(raw, env); err != nil {
		c.logger.DebugContext(ctx, "response is not an envelope",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("error", err.Error()),
		)
		env = &Envelope{}
	}
	env.Status = resp.StatusCode
	if !env.OK() {
		env.Err = httpclient.ErrorFromBody(resp.StatusCode, raw, backendService)
	}
	return env, nil
}
