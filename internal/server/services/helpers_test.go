package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/cryptox"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/options"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/tokens"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// cheap enough to run thousands of times in a test
var testArgon = cryptox.Params{Memory: 64, Time: 1, Threads: 1}

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

type fixture struct {
	clock      *fakeClock
	opts       *options.MemoryRepository
	store      *tokens.MemoryRepository
	accounts   *accounts.MemoryRepository
	secrets    *SecretRegistry
	capability *CapabilityService
	svc        *MagicLinkService
}

func testSettings(homeURL, domain string) MagicLinkSettings {
	return MagicLinkSettings{
		HomeURL:       homeURL,
		Domain:        domain,
		TokenTTL:      300 * time.Second,
		SessionTTL:    time.Hour,
		SessionSecret: []byte("session-secret"),
		Argon:         testArgon,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:    newFakeClock(),
		opts:     options.NewMemoryRepository(),
		accounts: accounts.NewMemoryRepository(),
	}
	f.store = tokens.NewMemoryRepository(f.clock.Now)
	f.secrets = NewSecretRegistry(f.opts, nil)
	f.capability = NewCapabilityService(f.opts)
	f.svc = NewMagicLinkService(f.secrets, f.store, f.capability,
		testSettings("https://example.com", "example.com"), f.clock.Now, nil)

	_, err := f.capability.Set(context.Background(), "on")
	require.NoError(t, err)
	return f
}

func (f *fixture) account(t *testing.T, id int64, login string) *models.Account {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), &models.Account{ID: id, Login: login, Email: login + "@example.com"})
	require.NoError(t, err)
	return a
}

// withDomain returns a service sharing f's stores but bound to another site.
func (f *fixture) withDomain(domain string) *MagicLinkService {
	return NewMagicLinkService(f.secrets, f.store, f.capability,
		testSettings("https://"+domain, domain), f.clock.Now, nil)
}

type mockOptions struct{ mock.Mock }

func (m *mockOptions) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockOptions) AddIfAbsent(ctx context.Context, name, value string) (string, error) {
	args := m.Called(ctx, name, value)
	return args.String(0), args.Error(1)
}

func (m *mockOptions) Set(ctx context.Context, name, value string) error {
	return m.Called(ctx, name, value).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Put(ctx context.Context, key string, rec *models.TokenRecord, ttl time.Duration) error {
	return m.Called(ctx, key, rec, ttl).Error(0)
}

func (m *mockTokens) Take(ctx context.Context, key string) (*models.TokenRecord, error) {
	args := m.Called(ctx, key)
	rec, _ := args.Get(0).(*models.TokenRecord)
	return rec, args.Error(1)
}

func (m *mockTokens) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokens) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(*models.Account)
	return out, args.Error(1)
}

func (m *mockAccounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*models.Account)
	return out, args.Error(1)
}

func (m *mockAccounts) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	args := m.Called(ctx, login)
	out, _ := args.Get(0).(*models.Account)
	return out, args.Error(1)
}

func (m *mockAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	out, _ := args.Get(0).(*models.Account)
	return out, args.Error(1)
}

var (
	_ options.Repository  = (*mockOptions)(nil)
	_ tokens.Repository   = (*mockTokens)(nil)
	_ accounts.Repository = (*mockAccounts)(nil)
)
