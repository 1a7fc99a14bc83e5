// Package repomanager provides a concrete RepositoryManager for the SQL
// dialects magiclink supports, wiring together repository constructors and
// database migrations (via goose), and opens the full set of stores a
// process needs.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/magiclink/internal/dbx"
	"github.com/dmitrijs2005/magiclink/internal/server/migrations"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/options"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/magiclink/internal/timex"
)

// SQLRepositoryManager vends SQL-backed repository implementations for one
// dialect and exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect.
func NewSQLRepositoryManager(dialect dbx.Dialect) RepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// Options returns an options.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Options(db dbx.DBTX) options.Repository {
	return options.NewSQLRepository(db, m.dialect)
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db, m.dialect)
}

// Tokens returns a tokens.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Tokens(db dbx.DBTX, clock timex.Clock) tokens.Repository {
	return tokens.NewSQLRepository(db, m.dialect, clock)
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := migrateUp(ctx, db, m.dialect); err != nil {
		return err
	}
	return nil
}
