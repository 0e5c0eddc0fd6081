package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend keeps documents in process memory.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Create(_ context.Context, body []byte) (string, error) {
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[id] = append([]byte(nil), body...)
	return id, nil
}

func (b *MemoryBackend) Load(_ context.Context, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	body, ok := b.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return append([]byte(nil), body...), nil
}

func (b *MemoryBackend) Store(_ context.Context, id string, body []byte, expectedRevision int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	current, ok := b.docs[id]
	if !ok {
		return ErrDocumentNotFound
	}
	rev, err := peekRevision(current)
	if err != nil {
		return err
	}
	if rev != expectedRevision {
		return ErrRevisionConflict
	}
	b.docs[id] = append([]byte(nil), body...)
	return nil
}
