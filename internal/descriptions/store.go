// Package descriptions fetches product description pages from the shop
// website and keeps them in a durable cache.
package descriptions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/chamanbahar/cbm-sales/internal/platform/cache"
)

// Store keeps fetched descriptions keyed by product id.
type Store interface {
	Get(ctx context.Context, productID int64) (string, bool, error)
	Put(ctx context.Context, productID int64, html string) error
}

// RedisStore keeps every description in one Redis hash with no expiry.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore uses the hash <prefix>:descriptions.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, key: cache.Key(prefix, "descriptions")}
}

func (s *RedisStore) Get(ctx context.Context, productID int64) (string, bool, error) {
	html, err := s.client.HGet(ctx, s.key, strconv.FormatInt(productID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("descriptions: read %d: %w", productID, err)
	}
	return html, true, nil
}

func (s *RedisStore) Put(ctx context.Context, productID int64, html string) error {
	if err := s.client.HSet(ctx, s.key, strconv.FormatInt(productID, 10), html).Err(); err != nil {
		return fmt.Errorf("descriptions: write %d: %w", productID, err)
	}
	return nil
}

// Len reports how many descriptions are cached.
func (s *RedisStore) Len(ctx context.Context) (int64, error) {
	return s.client.HLen(ctx, s.key).Result()
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64]string)}
}

func (s *MemoryStore) Get(_ context.Context, productID int64) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	html, ok := s.data[productID]
	return html, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, productID int64, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[productID] = html
	return nil
}
