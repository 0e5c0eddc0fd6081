package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// FileBackend keeps each document in its own JSON file and replaces it
// atomically. Revision checks are only safe within one process.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend stores documents under dir, creating it if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Create(_ context.Context, body []byte) (string, error) {
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := atomic.WriteFile(b.path(id), bytes.NewReader(body)); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return id, nil
}

func (b *FileBackend) Load(_ context.Context, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(id)
}

func (b *FileBackend) Store(_ context.Context, id string, body []byte, expectedRevision int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	current, err := b.read(id)
	if err != nil {
		return err
	}
	rev, err := peekRevision(current)
	if err != nil {
		return err
	}
	if rev != expectedRevision {
		return ErrRevisionConflict
	}
	if err := atomic.WriteFile(b.path(id), bytes.NewReader(body)); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (b *FileBackend) read(id string) ([]byte, error) {
	body, err := os.ReadFile(b.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return body, nil
}

func (b *FileBackend) path(id string) string {
	return filepath.Join(b.dir, filepath.Base(id)+".json")
}
