package options

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/dbx"
)

// SQLRepository keeps options in the options table. Queries run unchanged on
// PostgreSQL and SQLite apart from placeholder style.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Get(ctx context.Context, name string) (string, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT value FROM options
		 WHERE name = $1
		 `)

	var value string
	err := r.db.QueryRowContext(ctx, query, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return value, nil
}

// AddIfAbsent is a single upsert whose conflict branch rewrites the row with
// its own value, so RETURNING yields the stored value either way.
func (r *SQLRepository) AddIfAbsent(ctx context.Context, name, value string) (string, error) {
	query := dbx.Rebind(r.dialect,
		`INSERT INTO options (name, value)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET value = options.value
		 RETURNING value
		 `)

	var stored string
	if err := r.db.QueryRowContext(ctx, query, name, value).Scan(&stored); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return stored, nil
}

func (r *SQLRepository) Set(ctx context.Context, name, value string) error {
	query := dbx.Rebind(r.dialect,
		`INSERT INTO options (name, value)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET value = excluded.value
		 `)

	if _, err := r.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
