package tokens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
	"github.com/dmitrijs2005/magiclink/internal/timex"
)

// MemoryRepository keeps records in process memory. It only serves a single
// process, so a link must be redeemed by the process that issued it.
type MemoryRepository struct {
	mu      sync.Mutex
	now     timex.Clock
	records map[string]models.TokenRecord
}

func NewMemoryRepository(clock timex.Clock) *MemoryRepository {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &MemoryRepository{now: clock, records: make(map[string]models.TokenRecord)}
}

func (r *MemoryRepository) Put(_ context.Context, key string, rec *models.TokenRecord, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if old, ok := r.records[key]; ok && !old.Expired(now) {
		return fmt.Errorf("token %q: %w", key, common.ErrorAlreadyExists)
	}

	stored := *rec
	stored.ExpiresAt = now.Add(ttl)
	r.records[key] = stored
	return nil
}

func (r *MemoryRepository) Take(_ context.Context, key string) (*models.TokenRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.records, key)

	if rec.Expired(r.now()) {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (r *MemoryRepository) Sweep(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int64
	for k, rec := range r.records {
		if rec.Expired(now) {
			delete(r.records, k)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) Ping(_ context.Context) error { return nil }

// Len reports how many records are held, expired ones included.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
