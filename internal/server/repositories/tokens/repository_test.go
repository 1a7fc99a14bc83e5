package tokens

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// harness builds a fresh store; advance moves both the store's clock and,
// where relevant, the backend's own notion of time.
type harness func(t *testing.T) (repo Repository, advance func(time.Duration))

const ttl = 300 * time.Second

func record(clock func() time.Time, accountID int64) *models.TokenRecord {
	return &models.TokenRecord{AccountID: accountID, PrivateHash: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA", IssuedAt: clock()}
}

func runRepositorySuite(t *testing.T, h harness) {
	ctx := context.Background()

	t.Run("take returns record once", func(t *testing.T) {
		repo, _ := h(t)
		rec := record(time.Now, 42)
		require.NoError(t, repo.Put(ctx, "k1", rec, ttl))

		got, err := repo.Take(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.AccountID)
		assert.Equal(t, rec.PrivateHash, got.PrivateHash)
		assert.WithinDuration(t, rec.IssuedAt, got.IssuedAt, time.Millisecond)

		_, err = repo.Take(ctx, "k1")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("unknown key is absent", func(t *testing.T) {
		repo, _ := h(t)
		_, err := repo.Take(ctx, "never-issued")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("present at 299s", func(t *testing.T) {
		repo, advance := h(t)
		require.NoError(t, repo.Put(ctx, "k2", record(time.Now, 1), ttl))

		advance(299 * time.Second)

		got, err := repo.Take(ctx, "k2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.AccountID)
	})

	t.Run("absent at 301s", func(t *testing.T) {
		repo, advance := h(t)
		require.NoError(t, repo.Put(ctx, "k3", record(time.Now, 1), ttl))

		advance(301 * time.Second)

		_, err := repo.Take(ctx, "k3")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("duplicate key rejected", func(t *testing.T) {
		repo, _ := h(t)
		require.NoError(t, repo.Put(ctx, "dup", record(time.Now, 1), ttl))
		err := repo.Put(ctx, "dup", record(time.Now, 2), ttl)
		require.ErrorIs(t, err, common.ErrorAlreadyExists)

		got, err := repo.Take(ctx, "dup")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.AccountID, "first writer keeps the key")
	})

	t.Run("concurrent take yields exactly one record", func(t *testing.T) {
		repo, _ := h(t)
		require.NoError(t, repo.Put(ctx, "race", record(time.Now, 7), ttl))

		const n = 16
		var wins, absents int32
		var other atomic.Value

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				rec, err := repo.Take(ctx, "race")
				switch {
				case err == nil && rec != nil:
					atomic.AddInt32(&wins, 1)
				case errors.Is(err, common.ErrorNotFound):
					atomic.AddInt32(&absents, 1)
				default:
					other.Store(fmt.Sprint(err))
				}
			}()
		}
		close(start)
		wg.Wait()

		require.Nil(t, other.Load(), "unexpected error")
		assert.Equal(t, int32(1), wins)
		assert.Equal(t, int32(n-1), absents)
	})

	t.Run("ping", func(t *testing.T) {
		repo, _ := h(t)
		require.NoError(t, repo.Ping(ctx))
	})
}
