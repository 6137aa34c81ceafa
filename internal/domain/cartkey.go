package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// keySeparator joins product id and size in the wire form of a cart key.
const keySeparator = "|"

// CartKey identifies one cart line: a product in a specific size.
type CartKey struct {
	ProductID string
	Size      string
}

// NewCartKey builds a key. An empty size is allowed.
func NewCartKey(productID, size string) CartKey {
	return CartKey{ProductID: productID, Size: size}
}

// String returns the wire form "productId|size".
func (k CartKey) String() string {
	return k.ProductID + keySeparator + k.Size
}

// ParseCartKey splits s at the first separator. A key without a separator
// is a product with no size.
func ParseCartKey(s string) (CartKey, error) {
	id, size, _ := strings.Cut(s, keySeparator)
	if strings.TrimSpace(id) == "" {
		return CartKey{}, fmt.Errorf("cart key %q: missing product id", s)
	}
	return CartKey{ProductID: id, Size: size}, nil
}

// MarshalText implements encoding.TextMarshaler so CartKey can be a JSON
// object key.
func (k CartKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *CartKey) UnmarshalText(b []byte) error {
	parsed, err := ParseCartKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// CartItems maps cart keys to strictly positive quantities.
type CartItems map[CartKey]int

// Count returns the sum of all quantities.
func (c CartItems) Count() int {
	n := 0
	for _, q := range c {
		n += q
	}
	return n
}

// Increment adds one to key.
func (c CartItems) Increment(key CartKey) {
	c[key]++
}

// Decrement removes one from key, deleting it at zero. An absent key is a
// no-op. It reports whether anything changed.
func (c CartItems) Decrement(key CartKey) bool {
	q, ok := c[key]
	if !ok {
		return false
	}
	if q > 1 {
		c[key] = q - 1
	} else {
		delete(c, key)
	}
	return true
}

// Clone returns an independent copy.
func (c CartItems) Clone() CartItems {
	out := make(CartItems, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// UnmarshalJSON decodes {"id|size": qty}. Entries with non-positive
// quantities or unparseable keys are dropped.
func (c *CartItems) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode cart items: %w", err)
	}
	out := make(CartItems, len(raw))
	for k, v := range raw {
		q, ok := parseQuantity(v)
		if !ok {
			continue
		}
		key, err := ParseCartKey(k)
		if err != nil {
			continue
		}
		out[key] = q
	}
	*c = out
	return nil
}

// parseQuantity accepts a JSON integer in [1, math.MaxInt]. Strings,
// fractions, exponents and out-of-range values are rejected.
func parseQuantity(v json.RawMessage) (int, bool) {
	if v = bytes.TrimSpace(v); len(v) == 0 || v[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, false
	}
	q, err := strconv.ParseInt(n.String(), 10, strconv.IntSize)
	if err != nil || q < 1 {
		return 0, false
	}
	return int(q), true
}

// MarshalJSON encodes {"id|size": qty}, skipping non-positive quantities.
func (c CartItems) MarshalJSON() ([]byte, error) {
	raw := make(map[string]int, len(c))
	for k, v := range c {
		if v > 0 {
			raw[k.String()] = v
		}
	}
	return json.Marshal(raw)
}
