/**
 * @description
 * Fixed-window rate limit counters. RateLimitStore abstracts the counter
 * backend so the HTTP middleware can run against Redis in production and an
 * in-memory map in tests or single-node deployments.
 *
 * The Redis implementation keeps the whole increment-and-expire sequence in a
 * Lua script so concurrent requests across instances share one atomic window.
 */

package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts hits against a scoped subject inside a fixed window.
// Consume returns the hit count after this request and, once the window has
// started, how many seconds remain until it resets.
type RateLimitStore interface {
	Consume(ctx context.Context, scope string, subject string, window time.Duration) (count int, retryAfterSeconds int, err error)
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisRateLimitStore implements distributed fixed-window counting on Redis.
type RedisRateLimitStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRateLimitStore(client redis.UniversalClient, prefix string) *RedisRateLimitStore {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "fintrackr:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisRateLimitStore{
		client: client,
		prefix: trimmedPrefix,
	}
}

func (r *RedisRateLimitStore) Consume(
	ctx context.Context,
	scope string,
	subject string,
	window time.Duration,
) (count int, retryAfterSeconds int, err error) {
	if r == nil || r.client == nil || window <= 0 {
		return 0, 0, nil
	}

	normalizedScope := strings.TrimSpace(scope)
	normalizedSubject := strings.TrimSpace(subject)
	if normalizedScope == "" || normalizedSubject == "" {
		return 0, 0, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := fmt.Sprintf("%s:%s:%s", r.prefix, normalizedScope, normalizedSubject)
	rawResult, err := rateLimitScript.Run(ctx, r.client, []string{key}, windowMs).Result()
	if err != nil {
		return 0, 0, err
	}

	values, ok := rawResult.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis limiter response shape: %T", rawResult)
	}

	currentCount, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}

	ttlMs, ok := values[1].(int64)
	if !ok {
		return int(currentCount), 0, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}
	if ttlMs < 0 {
		ttlMs = windowMs
	}

	retryAfter := int(math.Ceil(float64(ttlMs) / 1000.0))
	if retryAfter < 1 {
		retryAfter = 1
	}

	return int(currentCount), retryAfter, nil
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// MemoryRateLimitStore is a process-local RateLimitStore. Counters reset when
// their window elapses; there is no cross-instance coordination.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow

	// now is swappable in tests.
	now func() time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (m *MemoryRateLimitStore) Consume(
	_ context.Context,
	scope string,
	subject string,
	window time.Duration,
) (count int, retryAfterSeconds int, err error) {
	if m == nil || window <= 0 {
		return 0, 0, nil
	}

	normalizedScope := strings.TrimSpace(scope)
	normalizedSubject := strings.TrimSpace(subject)
	if normalizedScope == "" || normalizedSubject == "" {
		return 0, 0, nil
	}

	key := normalizedScope + ":" + normalizedSubject
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++

	retryAfter := int(math.Ceil(w.resetAt.Sub(now).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}

	return w.count, retryAfter, nil
}
