package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/wholesale-storefront/pkg/redis"
)

// Storage persists one serialized cart per session. Load returns nil, nil
// when the session has no cart.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStorage keeps carts in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: map[string][]byte{}}
}

func (m *MemoryStorage) Load(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.carts[sessionID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), payload...), nil
}

func (m *MemoryStorage) Save(_ context.Context, sessionID string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = append([]byte(nil), payload...)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

type redisStore interface {
	GetEx(ctx context.Context, key string, ttl time.Duration) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisStorage keeps carts under the cart-storage namespace. Reads and writes
// both push the expiry out by ttl.
type RedisStorage struct {
	client redisStore
	ttl    time.Duration
}

func NewRedisStorage(client redisStore, ttl time.Duration) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisStorage{client: client, ttl: ttl}, nil
}

func (r *RedisStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	value, err := r.client.GetEx(ctx, r.client.CartKey(sessionID), r.ttl)
	if redis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (r *RedisStorage) Save(ctx context.Context, sessionID string, payload []byte) error {
	return r.client.Set(ctx, r.client.CartKey(sessionID), string(payload), r.ttl)
}

func (r *RedisStorage) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.client.CartKey(sessionID))
}
