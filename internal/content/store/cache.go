package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps the working copy of a document close to the editor so a
// reloaded session can resume without a round trip to the project store.
type Cache interface {
	Load(ctx context.Context, key string) (json.RawMessage, bool, error)
	Save(ctx context.Context, key string, doc json.RawMessage) error
	Delete(ctx context.Context, key string) error
}

// MemoryCache is a process-local Cache used in development and tests.
type MemoryCache struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{docs: make(map[string]json.RawMessage)}
}

func (m *MemoryCache) Load(ctx context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append(json.RawMessage(nil), b...), true, nil
}

func (m *MemoryCache) Save(ctx context.Context, key string, doc json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append(json.RawMessage(nil), doc...)
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

// RedisCache stores documents as JSON under "<prefix><key>" with a TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache. Prefix may be empty; a zero ttl
// keeps entries until they are deleted.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "draft:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) key(k string) string { return r.prefix + k }

func (r *RedisCache) Load(ctx context.Context, key string) (json.RawMessage, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return json.RawMessage(b), true, nil
}

func (r *RedisCache) Save(ctx context.Context, key string, doc json.RawMessage) error {
	return r.client.Set(ctx, r.key(key), []byte(doc), r.ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
