package repomanager

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/magiclink/internal/server/config"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T, store string) *config.Config {
	t.Helper()
	var cfg config.Config
	cfg.LoadDefaults()
	cfg.DatabaseDriver = config.DriverSQLite
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "nested", "dir", "magiclink.db")
	cfg.TokenStore = store
	return &cfg
}

func TestOpenStores_SQLite(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		store string
		want  any
	}{
		{store: config.TokenStoreSQL, want: &tokens.SQLRepository{}},
		{store: config.TokenStoreMemory, want: &tokens.MemoryRepository{}},
	}

	for _, tt := range tests {
		t.Run(tt.store, func(t *testing.T) {
			s, err := OpenStores(ctx, sqliteConfig(t, tt.store), nil)
			require.NoError(t, err)
			defer s.Close()

			assert.IsType(t, tt.want, s.Tokens)
			require.NoError(t, s.Tokens.Ping(ctx))

			require.NoError(t, s.Options.Set(ctx, "k", "v"))
			v, err := s.Options.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v", v)
		})
	}
}

func TestOpenStores_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := sqliteConfig(t, config.TokenStoreRedis)
	cfg.RedisAddr = mr.Addr()

	s, err := OpenStores(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &tokens.RedisRepository{}, s.Tokens)
}

func TestOpenStores_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := sqliteConfig(t, config.TokenStoreRedis)
	cfg.RedisAddr = addr

	_, err := OpenStores(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t, config.TokenStoreSQL)
	cfg.DatabaseDriver = "mysql"

	_, _, err := OpenDB(context.Background(), cfg)
	require.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	got, err := sqliteDSN(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", got)

	got, err = sqliteDSN("file:x.db?mode=memory")
	require.NoError(t, err)
	assert.Equal(t, "file:x.db?mode=memory", got)

	path := filepath.Join(t.TempDir(), "a", "b.db")
	got, err = sqliteDSN(path)
	require.NoError(t, err)
	assert.Equal(t, "file:"+path+"?_pragma=busy_timeout(5000)", got)
	assert.DirExists(t, filepath.Dir(path))
}
