package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/magiclink/internal/dbx"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/options"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/magiclink/internal/timex"
)

type RepositoryManager interface {
	Dialect() dbx.Dialect
	RunMigrations(context.Context, *sql.DB) error
	Options(db dbx.DBTX) options.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Tokens(db dbx.DBTX, clock timex.Clock) tokens.Repository
}
