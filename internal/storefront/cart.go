package storefront

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/FoodStore/internal/domain"
)

// Cart is the customer's cart. Local changes are applied immediately; with a
// session the change is mirrored to the backend and the server's cart
// replaces the local one when it answers successfully.
type Cart struct {
	st     *state
	client *Client
	logger *slog.Logger
}

// Add increments the quantity of productID in size. The returned error
// reports a failed sync only; the local increment stands either way.
func (c *Cart) Add(ctx context.Context, productID, size string) error {
	key := domain.NewCartKey(productID, size)

	c.st.mu.Lock()
	c.st.items.Increment(key)
	seq := c.st.nextSeq()
	c.st.lastLocal = seq
	token := c.st.token
	c.st.mu.Unlock()

	if token == "" {
		return nil
	}
	env, err := c.client.AddToCart(ctx, token, key)
	return c.applyRemote(ctx, "add to cart", seq, env, err)
}

// Remove decrements the quantity of productID in size, deleting the entry
// at zero. Removing an absent entry changes nothing locally.
func (c *Cart) Remove(ctx context.Context, productID, size string) error {
	key := domain.NewCartKey(productID, size)

	c.st.mu.Lock()
	c.st.items.Decrement(key)
	seq := c.st.nextSeq()
	c.st.lastLocal = seq
	token := c.st.token
	c.st.mu.Unlock()

	if token == "" {
		return nil
	}
	env, err := c.client.RemoveFromCart(ctx, token, key)
	return c.applyRemote(ctx, "remove from cart", seq, env, err)
}

// Reload replaces the cart with the server's copy. Guests have no server
// cart, so Reload does nothing for them.
func (c *Cart) Reload(ctx context.Context) error {
	c.st.mu.Lock()
	token := c.st.token
	seq := c.st.nextSeq()
	c.st.mu.Unlock()

	if token == "" {
		return nil
	}
	env, err := c.client.GetCart(ctx, token)
	return c.applyRemote(ctx, "load cart", seq, env, err)
}

// applyRemote writes a server snapshot into the cart unless a newer local
// mutation or a newer snapshot has already been applied.
func (c *Cart) applyRemote(ctx context.Context, op string, seq uint64, env *Envelope, err error) error {
	if err != nil {
		c.logger.WarnContext(ctx, "cart sync failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	if !env.Succeeded() {
		c.logger.WarnContext(ctx, "cart sync rejected",
			slog.String("op", op),
			slog.Int("status", env.Status),
			slog.String("message", env.Message),
		)
		return rejection(op, env)
	}
	if env.CartData == nil {
		return nil
	}

	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if seq <= c.st.lastApplied || seq < c.st.lastLocal {
		c.logger.DebugContext(ctx, "discarding stale cart snapshot",
			slog.String("op", op),
			slog.Uint64("seq", seq),
			slog.Uint64("last_applied", c.st.lastApplied),
			slog.Uint64("last_local", c.st.lastLocal),
		)
		return nil
	}
	c.st.items = env.CartData.Clone()
	c.st.lastApplied = seq
	return nil
}

// Count returns the total number of units in the cart.
func (c *Cart) Count() int {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.st.items.Count()
}

// Quantity returns the quantity of productID in size.
func (c *Cart) Quantity(productID, size string) int {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.st.items[domain.NewCartKey(productID, size)]
}

// Items returns a copy of the cart entries.
func (c *Cart) Items() domain.CartItems {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.st.items.Clone()
}

// TotalAmount sums quantity times unit price over all entries. Entries whose
// product is not in the catalog contribute zero.
func (c *Cart) TotalAmount() decimal.Decimal {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()

	total := decimal.Zero
	for key, qty := range c.st.items {
		p, ok := c.st.product(key.ProductID)
		if !ok {
			continue
		}
		total = total.Add(PriceFor(p, key.Size).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}
