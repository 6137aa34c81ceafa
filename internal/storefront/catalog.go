package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/FoodStore/internal/domain"
)

// ErrRejected is returned when the backend answers without the success flag.
var ErrRejected = errors.New("request rejected by server")

// Catalog caches the product list fetched from the backend.
type Catalog struct {
	st     *state
	client *Client
	logger *slog.Logger
}

// Load fetches the product list and replaces the cached sequence. On any
// failure the previous sequence is kept. Load never retries.
func (c *Catalog) Load(ctx context.Context) error {
	c.st.mu.Lock()
	c.st.loading++
	c.st.mu.Unlock()
	defer func() {
		c.st.mu.Lock()
		c.st.loading--
		c.st.mu.Unlock()
	}()

	env, products, err := c.client.ListFoods(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "food list request failed", slog.String("error", err.Error()))
		return fmt.Errorf("load catalog: %w", err)
	}
	if !env.Succeeded() {
		c.logger.WarnContext(ctx, "food list rejected",
			slog.Int("status", env.Status),
			slog.String("message", env.Message),
		)
		return rejection("load catalog", env)
	}

	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	c.st.mu.Lock()
	c.st.products = products
	c.st.index = index
	c.st.version++
	c.st.mu.Unlock()

	c.logger.DebugContext(ctx, "catalog loaded", slog.Int("products", len(products)))
	return nil
}

// Loading reports whether a load is in flight.
func (c *Catalog) Loading() bool {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.st.loading > 0
}

// Version increases with every successful load.
func (c *Catalog) Version() uint64 {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.st.version
}

// Products returns a copy of the cached sequence.
func (c *Catalog) Products() []domain.Product {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	out := make([]domain.Product, len(c.st.products))
	copy(out, c.st.products)
	return out
}

// Find returns a copy of the product with the given id.
func (c *Catalog) Find(productID string) (*domain.Product, bool) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	p, ok := c.st.product(productID)
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// rejection builds the error for an envelope that did not succeed.
func rejection(op string, env *Envelope) error {
	if env.Err != nil {
		return fmt.Errorf("%s: %w", op, env.Err)
	}
	if env.Message != "" {
		return fmt.Errorf("%s: %w: %s", op, ErrRejected, env.Message)
	}
	return fmt.Errorf("%s: %w", op, ErrRejected)
}
