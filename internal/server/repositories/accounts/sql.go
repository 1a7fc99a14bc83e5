package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/dbx"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Create inserts a new account and fills in its ID. A duplicate login or
// email returns common.ErrorAlreadyExists.
func (r *SQLRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := dbx.Rebind(r.dialect,
		`INSERT INTO accounts (login, email, created_at)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `)

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, query,
		account.Login, account.Email, account.CreatedAt).Scan(&account.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("account %q: %w", account.Login, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *SQLRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	return r.getBy(ctx, "login", login)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getBy(ctx, "email", email)
}

// getBy selects a single account by column; column is never user input.
func (r *SQLRepository) getBy(ctx context.Context, column string, value any) (*models.Account, error) {
	query := dbx.Rebind(r.dialect,
		`SELECT id, login, email, created_at FROM accounts
		 WHERE `+column+` = $1
		 `)

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&account.ID, &account.Login, &account.Email, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}
