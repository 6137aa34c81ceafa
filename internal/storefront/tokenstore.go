package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists small string values across runs. Get returns an
// empty string for a missing key.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// FileTokenStore keeps values in a JSON object on disk.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore returns a store backed by path. The file is created on
// the first Set.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Get implements TokenStore.
func (f *FileTokenStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set implements TokenStore. The file is replaced atomically.
func (f *FileTokenStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (f *FileTokenStore) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return values, nil
}

const tokenKeyPrefix = "storefront:"

// RedisTokenStore keeps values in Redis under "storefront:<key>".
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenStore returns a Redis backed store. A zero ttl keeps values
// until overwritten.
func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

// Get implements TokenStore.
func (r *RedisTokenStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, tokenKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s from redis: %w", key, err)
	}
	return v, nil
}

// Set implements TokenStore.
func (r *RedisTokenStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, tokenKeyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("set %s in redis: %w", key, err)
	}
	return nil
}
