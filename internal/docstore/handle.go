package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/redis/go-redis/v9"
)

// HandleStore remembers which document a deployment uses so restarts
// keep working on the same data. Load returns "" when nothing is saved.
type HandleStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// FileHandleStore keeps the handle in a small text file.
type FileHandleStore struct {
	path string
}

// NewFileHandleStore returns a store writing to path.
func NewFileHandleStore(path string) *FileHandleStore {
	return &FileHandleStore{path: path}
}

func (s *FileHandleStore) Load(_ context.Context) (string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read handle: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *FileHandleStore) Save(_ context.Context, id string) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create handle dir: %w", err)
		}
	}
	if err := atomic.WriteFile(s.path, strings.NewReader(id+"\n")); err != nil {
		return fmt.Errorf("write handle: %w", err)
	}
	return nil
}

func (s *FileHandleStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove handle: %w", err)
	}
	return nil
}

// RedisHandleStore shares the handle between replicas through a Redis key.
type RedisHandleStore struct {
	client *redis.Client
	key    string
}

// NewRedisHandleStore returns a store using key on client.
func NewRedisHandleStore(client *redis.Client, key string) *RedisHandleStore {
	return &RedisHandleStore{client: client, key: key}
}

func (s *RedisHandleStore) Load(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get handle: %w", err)
	}
	return id, nil
}

func (s *RedisHandleStore) Save(ctx context.Context, id string) error {
	if err := s.client.Set(ctx, s.key, id, 0).Err(); err != nil {
		return fmt.Errorf("redis set handle: %w", err)
	}
	return nil
}

func (s *RedisHandleStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del handle: %w", err)
	}
	return nil
}

// MemoryHandleStore keeps the handle for the life of the process.
type MemoryHandleStore struct {
	mu sync.Mutex
	id string
}

func (s *MemoryHandleStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemoryHandleStore) Save(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemoryHandleStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	return nil
}
