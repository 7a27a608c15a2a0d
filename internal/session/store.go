package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 会话持久化
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore 基于 Redis 的会话存储
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "megano"
	}
	return &RedisStore{client: client, prefix: prefix + ":session:"}
}

// Load 读取会话，不存在时返回新会话
func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(id), nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(id, raw), nil
}

// Save 写入会话并刷新过期时间
func (s *RedisStore) Save(ctx context.Context, state *State, ttl time.Duration) error {
	raw, err := Encode(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+state.ID(), raw, ttl).Err(); err != nil {
		return err
	}
	state.markSaved()
	return nil
}

// Delete 删除会话
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.prefix+id).Err()
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore 进程内会话存储（Redis 未启用或测试时使用）
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), now: time.Now}
}

// Load 读取会话，不存在或过期时返回新会话
func (s *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return New(id), nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.items, id)
		return New(id), nil
	}
	return Decode(id, entry.raw), nil
}

// Save 写入会话
func (s *MemoryStore) Save(_ context.Context, state *State, ttl time.Duration) error {
	raw, err := Encode(state)
	if err != nil {
		return err
	}
	entry := memoryEntry{raw: raw}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[state.ID()] = entry
	s.mu.Unlock()
	state.markSaved()
	return nil
}

// Delete 删除会话
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}
