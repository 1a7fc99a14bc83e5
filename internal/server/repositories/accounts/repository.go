// Package accounts declares the account directory consulted when an
// operator asks for a login link.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/magiclink/internal/server/models"
)

// Repository looks accounts up by id, login or email. Lookups that match
// nothing return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}
