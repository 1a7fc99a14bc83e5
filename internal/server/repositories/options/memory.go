package options

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/magiclink/internal/common"
)

// MemoryRepository is a process-local option store.
type MemoryRepository struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: make(map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.values[name]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (r *MemoryRepository) AddIfAbsent(_ context.Context, name, value string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.values[name]; ok {
		return v, nil
	}
	r.values[name] = value
	return value, nil
}

func (r *MemoryRepository) Set(_ context.Context, name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[name] = value
	return nil
}
