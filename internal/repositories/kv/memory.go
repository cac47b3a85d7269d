package kv

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/soraprompter/internal/common"
)

type memoryEntry struct {
	value   []byte
	version int64
}

// MemoryRepository keeps pairs in process memory. Nothing survives a restart.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string]memoryEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]memoryEntry)}
}

func (r *MemoryRepository) Get(ctx context.Context, key string) ([]byte, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.data[key]
	if !ok {
		return nil, "", nil
	}
	return append([]byte(nil), e.value...), strconv.FormatInt(e.version, 10), nil
}

func (r *MemoryRepository) Put(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(key, value)
	return nil
}

func (r *MemoryRepository) PutIf(ctx context.Context, key string, value []byte, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := ""
	if e, ok := r.data[key]; ok {
		current = strconv.FormatInt(e.version, 10)
	}
	if current != version {
		return fmt.Errorf("kv[%s] at version %q, want %q: %w", key, current, version, common.ErrConflict)
	}
	r.store(key, value)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) store(key string, value []byte) {
	e := r.data[key]
	e.value = append([]byte(nil), value...)
	e.version++
	r.data[key] = e
}
