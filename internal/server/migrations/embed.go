// Package migrations embeds the goose SQL migrations, one directory per
// supported dialect, and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/dmitrijs2005/magiclink/internal/dbx"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Up applies every pending migration for the given dialect.
func Up(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	var gooseDialect string
	switch d {
	case dbx.DialectPostgres:
		gooseDialect = "pgx"
	case dbx.DialectSQLite:
		gooseDialect = "sqlite3"
	default:
		return fmt.Errorf("unsupported dialect %q", d)
	}

	goose.SetBaseFS(Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, string(d))
}
