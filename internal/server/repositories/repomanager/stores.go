package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/magiclink/internal/dbx"
	"github.com/dmitrijs2005/magiclink/internal/filex"
	"github.com/dmitrijs2005/magiclink/internal/server/config"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/options"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/magiclink/internal/timex"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// Stores bundles the repositories a magiclink process works with.
type Stores struct {
	DB       *sql.DB
	Options  options.Repository
	Accounts accounts.Repository
	Tokens   tokens.Repository

	closers []func() error
}

// Close releases every connection opened by OpenStores.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenDB opens and migrates the database described by cfg.
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, RepositoryManager, error) {
	var (
		driverName string
		dsn        = cfg.DatabaseDSN
		dialect    dbx.Dialect
	)

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		driverName, dialect = "pgx", dbx.DialectPostgres
	case config.DriverSQLite:
		driverName, dialect = "sqlite", dbx.DialectSQLite
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if dialect == dbx.DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	m := NewSQLRepositoryManager(dialect)
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	return db, m, nil
}

// sqliteDSN turns a plain file path into an absolute one with its parent
// directory created, and adds a busy timeout. URIs and :memory: are kept.
func sqliteDSN(dsn string) (string, error) {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	abs, err := filex.EnsureDirFor(dsn)
	if err != nil {
		return "", err
	}
	return "file:" + abs + "?_pragma=busy_timeout(5000)", nil
}

// OpenStores opens the database and the configured token store.
func OpenStores(ctx context.Context, cfg *config.Config, clock timex.Clock) (*Stores, error) {
	db, m, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &Stores{
		DB:       db,
		Options:  m.Options(db),
		Accounts: m.Accounts(db),
		closers:  []func() error{db.Close},
	}

	switch cfg.TokenStore {
	case config.TokenStoreSQL:
		s.Tokens = m.Tokens(db, clock)
	case config.TokenStoreMemory:
		s.Tokens = tokens.NewMemoryRepository(clock)
	case config.TokenStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.closers = append(s.closers, client.Close)
		s.Tokens = tokens.NewRedisRepository(client, clock)
		if err := s.Tokens.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("token store: %w", err)
		}
	default:
		_ = s.Close()
		return nil, fmt.Errorf("unsupported token store %q", cfg.TokenStore)
	}

	return s, nil
}
