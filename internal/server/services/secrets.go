// Package services contains server-side business logic: the endpoint secret
// registry, the capability flag, account resolution and the magic link
// issue/redeem protocol built on top of them.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/logging"
	"github.com/dmitrijs2005/magiclink/internal/server/repositories/options"
	"github.com/google/uuid"
)

// EndpointSecrets hands out the site-wide endpoint secret that prefixes
// every magic URL.
type EndpointSecrets interface {
	// Current returns the live secret, creating one on first use.
	Current(ctx context.Context) (string, error)
	// Rotate replaces the secret, orphaning every link issued before.
	Rotate(ctx context.Context) error
}

// SecretRegistry keeps the endpoint secret as a named option so that every
// process sharing the option store agrees on it.
type SecretRegistry struct {
	options  options.Repository
	logger   logging.Logger
	generate func() string

	// last value seen; diagnostics only, never used for decisions
	last atomic.Pointer[string]
}

func NewSecretRegistry(opts options.Repository, logger logging.Logger) *SecretRegistry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SecretRegistry{
		options:  opts,
		logger:   logger.With("module", "secrets"),
		generate: uuid.NewString,
	}
}

// Current reads the store on every call so a rotation made by another
// process is seen at once. When no secret exists yet a fresh one is offered
// with AddIfAbsent and whichever value won is returned.
func (r *SecretRegistry) Current(ctx context.Context) (string, error) {
	v, err := r.options.Get(ctx, common.EndpointOptionName)
	if err == nil {
		r.observe(v)
		return v, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("%w: read endpoint secret: %w", common.ErrStorageFault, err)
	}

	v, err = r.options.AddIfAbsent(ctx, common.EndpointOptionName, r.generate())
	if err != nil {
		return "", fmt.Errorf("%w: create endpoint secret: %w", common.ErrStorageFault, err)
	}
	r.logger.Info(ctx, "endpoint secret created")
	r.observe(v)
	return v, nil
}

// Rotate stores a new secret unconditionally.
func (r *SecretRegistry) Rotate(ctx context.Context) error {
	v := r.generate()
	if err := r.options.Set(ctx, common.EndpointOptionName, v); err != nil {
		return fmt.Errorf("%w: rotate endpoint secret: %w", common.ErrStorageFault, err)
	}
	r.logger.Info(ctx, "endpoint secret rotated")
	r.observe(v)
	return nil
}

// Last returns the most recent secret this registry has seen, or "".
func (r *SecretRegistry) Last() string {
	if p := r.last.Load(); p != nil {
		return *p
	}
	return ""
}

func (r *SecretRegistry) observe(v string) {
	r.last.Store(&v)
}
