package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/FoodStore/internal/domain"
	"github.com/utafrali/FoodStore/pkg/database"
)

const keyPrefix = "cart:"

// decrementScript lowers a field by one and deletes it at zero, then
// refreshes the TTL while the cart is not empty.
var decrementScript = redis.NewScript(`
local qty = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
if qty <= 1 then
	redis.call('HDEL', KEYS[1], ARGV[1])
else
	redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
end
if redis.call('EXISTS', KEYS[1]) == 1 and tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return redis.call('HGETALL', KEYS[1])
`)

// CartRepository implements repository.CartRepository using a Redis hash
// per user keyed by "productId|size".
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the user's cart. A missing hash is an empty cart.
func (r *CartRepository) Get(ctx context.Context, userID string) (domain.CartItems, error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "HGETALL", "HGETALL cart")
	fields, err := r.client.HGetAll(ctx, keyPrefix+userID).Result()
	end(err)
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return decodeCart(fields), nil
}

// Increment adds one unit of key and refreshes the cart TTL.
func (r *CartRepository) Increment(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error) {
	redisKey := keyPrefix + userID

	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "HINCRBY", "HINCRBY cart")
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, redisKey, key.String(), 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, redisKey, r.ttl)
	}
	all := pipe.HGetAll(ctx, redisKey)
	_, err := pipe.Exec(ctx)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("redis increment cart: %w", err)
	}

	return decodeCart(all.Val()), nil
}

// Decrement removes one unit of key. An absent key leaves the cart
// unchanged.
func (r *CartRepository) Decrement(ctx context.Context, userID string, key domain.CartKey) (domain.CartItems, error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "EVALSHA", "decrement cart line")
	res, err := decrementScript.Run(ctx, r.client,
		[]string{keyPrefix + userID},
		key.String(), r.ttl.Milliseconds(),
	).StringSlice()
	end(err)
	if err != nil {
		return nil, fmt.Errorf("redis decrement cart: %w", err)
	}

	fields := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		fields[res[i]] = res[i+1]
	}
	return decodeCart(fields), nil
}

// Delete removes the whole cart.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

// decodeCart skips fields that are not a valid key or a positive quantity.
func decodeCart(fields map[string]string) domain.CartItems {
	items := make(domain.CartItems, len(fields))
	for field, raw := range fields {
		key, err := domain.ParseCartKey(field)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			continue
		}
		items[key] = qty
	}
	return items
}
