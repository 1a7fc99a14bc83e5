package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
)

// MemoryRepository is a process-local account directory for tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]models.Account)}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.byID {
		if a.Login == account.Login || a.Email == account.Email {
			return nil, fmt.Errorf("account %q: %w", account.Login, common.ErrorAlreadyExists)
		}
	}

	if account.ID == 0 {
		r.nextID++
		account.ID = r.nextID
	} else if _, taken := r.byID[account.ID]; taken {
		return nil, fmt.Errorf("account %d: %w", account.ID, common.ErrorAlreadyExists)
	} else if account.ID > r.nextID {
		r.nextID = account.ID
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	r.byID[account.ID] = *account
	return account, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) GetByLogin(_ context.Context, login string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.Login == login })
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	return r.find(func(a models.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) find(match func(models.Account) bool) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if match(a) {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}
