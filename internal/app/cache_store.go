/**
 * @description
 * Short-lived response cache. CacheStore abstracts the backend so read-heavy
 * endpoints can be served from Redis in production or an in-process map when
 * Redis is unavailable. Values are opaque byte payloads; expiry handling is
 * the store's problem, callers just Get and Set.
 */

package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore is a TTL'd byte cache. Get returns ok=false on a miss or an
// expired entry. Set overwrites any existing entry under the key.
type CacheStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCacheStore keeps cached payloads in Redis with per-key TTLs.
type RedisCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCacheStore(client redis.UniversalClient, prefix string) *RedisCacheStore {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "fintrackr:cache"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisCacheStore{
		client: client,
		prefix: trimmedPrefix,
	}
}

func (r *RedisCacheStore) key(key string) string {
	return r.prefix + ":" + key
}

func (r *RedisCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r == nil || r.client == nil {
		return nil, false, nil
	}
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r == nil || r.client == nil || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *RedisCacheStore) Delete(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Del(ctx, r.key(key)).Err()
}

type memoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheStore is a process-local CacheStore. Expired entries are pruned
// lazily on read.
type MemoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry

	// now is swappable in tests.
	now func() time.Time
}

func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{
		entries: make(map[string]memoryCacheEntry),
		now:     time.Now,
	}
}

func (m *MemoryCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	copied := make([]byte, len(value))
	copy(copied, value)

	m.mu.Lock()
	m.entries[key] = memoryCacheEntry{
		value:     copied,
		expiresAt: m.now().Add(ttl),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCacheStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
