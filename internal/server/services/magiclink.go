package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/cryptox"
	"github.com/dmitrijs2005/magiclink/internal/logging"
	"github.com/dmitrijs2005/magiclink/internal/server/auth"
	"github.com/dmitrijs2005/magiclink/internal/server/config"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/magiclink/internal/timex"
)

// IssuedLink is the outcome of a successful issuance.
type IssuedLink struct {
	Account   *models.Account
	PublicKey string
	URL       string
	TTL       time.Duration
	ExpiresAt time.Time
}

// Session is the outcome of a successful redemption.
type Session struct {
	AccountID int64
	Token     string
	TTL       time.Duration
	ExpiresAt time.Time
}

// MagicLinkSettings are the site-level inputs of issuance and redemption.
type MagicLinkSettings struct {
	HomeURL       string
	Domain        string
	TokenTTL      time.Duration
	SessionTTL    time.Duration
	SessionSecret []byte
	Argon         cryptox.Params
}

// SettingsFromConfig derives MagicLinkSettings from cfg.
func SettingsFromConfig(cfg *config.Config) MagicLinkSettings {
	return MagicLinkSettings{
		HomeURL:       cfg.HomeURL,
		Domain:        cfg.Domain(),
		TokenTTL:      cfg.TokenTTL,
		SessionTTL:    cfg.SessionTTL,
		SessionSecret: []byte(cfg.SessionSecret),
		Argon:         cfg.ArgonParams(),
	}
}

// MagicLinkService mints single-use login links and redeems them.
type MagicLinkService struct {
	secrets    EndpointSecrets
	tokens     tokens.Repository
	capability *CapabilityService
	settings   MagicLinkSettings
	now        timex.Clock
	logger     logging.Logger

	newPublicKey func() (string, error)
}

func NewMagicLinkService(
	secrets EndpointSecrets,
	store tokens.Repository,
	capability *CapabilityService,
	settings MagicLinkSettings,
	clock timex.Clock,
	logger logging.Logger,
) *MagicLinkService {
	if clock == nil {
		clock = timex.SystemClock
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &MagicLinkService{
		secrets:      secrets,
		tokens:       store,
		capability:   capability,
		settings:     settings,
		now:          clock,
		logger:       logger.With("module", "magiclink"),
		newPublicKey: GeneratePublicKey,
	}
}

// Issue checks that the capability is on and mints a link for account.
func (s *MagicLinkService) Issue(ctx context.Context, account *models.Account) (*IssuedLink, error) {
	if err := s.capability.Require(ctx); err != nil {
		return nil, err
	}
	return s.Mint(ctx, account)
}

// Mint creates a token bound to account, the current endpoint secret and
// the site domain, stores it for the token TTL and returns its URL. It reads
// the secret once and writes the store once.
func (s *MagicLinkService) Mint(ctx context.Context, account *models.Account) (*IssuedLink, error) {
	secret, err := s.secrets.Current(ctx)
	if err != nil {
		return nil, err
	}

	publicKey, err := s.newPublicKey()
	if err != nil {
		return nil, fmt.Errorf("generate public key: %w", err)
	}

	issuedAt := s.now()
	rec := &models.TokenRecord{
		AccountID:   account.ID,
		PrivateHash: cryptox.Hash(bindingMaterial(publicKey, secret, s.settings.Domain, account.ID), s.settings.Argon),
		IssuedAt:    issuedAt,
	}

	if err := s.tokens.Put(ctx, publicKey, rec, s.settings.TokenTTL); err != nil {
		return nil, fmt.Errorf("%w: store token: %w", common.ErrStorageFault, err)
	}

	s.logger.Info(ctx, "magic link issued", "account_id", account.ID, "ttl", s.settings.TokenTTL.String())

	return &IssuedLink{
		Account:   account,
		PublicKey: publicKey,
		URL:       ComposeURL(s.settings.HomeURL, secret, publicKey),
		TTL:       s.settings.TokenTTL,
		ExpiresAt: issuedAt.Add(s.settings.TokenTTL),
	}, nil
}

// Invalidate rotates the endpoint secret, which makes every outstanding
// link unreachable. Stored records are left to expire.
func (s *MagicLinkService) Invalidate(ctx context.Context) error {
	if err := s.capability.Require(ctx); err != nil {
		return err
	}
	return s.secrets.Rotate(ctx)
}

// Redeem consumes the token named by publicKey if endpoint matches the live
// secret and the stored hash verifies. Every way of failing that depends on
// the request returns common.ErrRedemptionRejected; only storage faults
// surface as something else.
func (s *MagicLinkService) Redeem(ctx context.Context, endpoint, publicKey string) (*Session, error) {
	on, err := s.capability.Enabled(ctx)
	if err != nil {
		return nil, err
	}
	if !on {
		return nil, s.reject(ctx, "capability off")
	}

	// read once; a concurrent rotation does not affect this request
	secret, err := s.secrets.Current(ctx)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(endpoint), []byte(secret)) != 1 {
		return nil, s.reject(ctx, "endpoint mismatch")
	}

	rec, err := s.tokens.Take(ctx, publicKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, s.reject(ctx, "unknown key")
		}
		return nil, fmt.Errorf("%w: take token: %w", common.ErrStorageFault, err)
	}

	ok, err := cryptox.Verify(bindingMaterial(publicKey, secret, s.settings.Domain, rec.AccountID), rec.PrivateHash)
	if err != nil || !ok {
		return nil, s.reject(ctx, "hash mismatch")
	}

	now := s.now()
	token, err := auth.GenerateToken(rec.AccountID, s.settings.SessionSecret, s.settings.SessionTTL, now)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	s.logger.Info(ctx, "magic link redeemed", "account_id", rec.AccountID)

	return &Session{
		AccountID: rec.AccountID,
		Token:     token,
		TTL:       s.settings.SessionTTL,
		ExpiresAt: now.Add(s.settings.SessionTTL),
	}, nil
}

func (s *MagicLinkService) reject(ctx context.Context, reason string) error {
	s.logger.Debug(ctx, "redemption rejected", "reason", reason)
	return common.ErrRedemptionRejected
}

// bindingMaterial is the hashed input that ties a token to its public key,
// the endpoint secret epoch, the site and the account.
func bindingMaterial(publicKey, secret, domain string, accountID int64) []byte {
	return []byte(publicKey + "|" + secret + "|" + domain + "|" + strconv.FormatInt(accountID, 10))
}
