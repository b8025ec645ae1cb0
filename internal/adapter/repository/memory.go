package repository

import (
	"context"
	"fmt"
	"sync"

	"cv-creator/internal/apperr"
)

// MemoryBlobs keeps blobs in process memory. Data is lost on exit.
type MemoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: map[string][]byte{}}
}

func (r *MemoryBlobs) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: blob %q", apperr.ErrNotFound, key)
	}
	return append([]byte(nil), b...), nil
}

func (r *MemoryBlobs) Put(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryBlobs) Close() error { return nil }
