package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/accounts"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AccountService resolves operator-supplied locators to accounts and adds
// accounts to the directory.
type AccountService struct {
	repo accounts.Repository
}

func NewAccountService(repo accounts.Repository) *AccountService {
	return &AccountService{repo: repo}
}

// Resolve looks up loc. Email and id locators fall back to a login lookup
// with the same text, since logins may look like either.
func (s *AccountService) Resolve(ctx context.Context, loc models.Locator) (*models.Account, error) {
	var lookups []func() (*models.Account, error)

	byLogin := func() (*models.Account, error) { return s.repo.GetByLogin(ctx, loc.Value) }

	switch loc.Kind {
	case models.LocatorEmail:
		lookups = append(lookups, func() (*models.Account, error) { return s.repo.GetByEmail(ctx, loc.Value) }, byLogin)
	case models.LocatorID:
		lookups = append(lookups, func() (*models.Account, error) { return s.repo.GetByID(ctx, loc.ID) }, byLogin)
	default:
		lookups = append(lookups, byLogin)
	}

	for _, lookup := range lookups {
		a, err := lookup()
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %w", common.ErrStorageFault, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", common.ErrAccountNotFound, loc.Value)
}

// ResolveRaw classifies raw with models.ParseLocator and resolves it.
func (s *AccountService) ResolveRaw(ctx context.Context, raw string) (*models.Account, error) {
	loc, err := models.ParseLocator(raw)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, loc)
}

// Create adds an account with the given login and email.
func (s *AccountService) Create(ctx context.Context, login, email string) (*models.Account, error) {
	login = strings.TrimSpace(login)
	email = strings.TrimSpace(email)

	if login == "" {
		return nil, errors.New("login must not be empty")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid email %q", email)
	}

	a, err := s.repo.Create(ctx, &models.Account{Login: login, Email: email})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStorageFault, err)
	}
	return a, nil
}
