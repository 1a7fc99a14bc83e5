// Package tokens holds the ephemeral store of issued magic login tokens.
// A record lives under its public key until it is taken or its TTL runs out.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/server/models"
)

// Repository is a key-value store with per-entry expiry and an atomic
// read-and-delete.
type Repository interface {
	// Put stores rec under key for ttl. The stored copy has ExpiresAt set
	// from the store's clock. An existing key yields common.ErrorAlreadyExists.
	Put(ctx context.Context, key string, rec *models.TokenRecord, ttl time.Duration) error

	// Take removes and returns the record under key in one atomic step.
	// Absent and expired keys both return common.ErrorNotFound; of any number
	// of concurrent calls for one key at most one gets the record.
	Take(ctx context.Context, key string) (*models.TokenRecord, error)

	// Sweep deletes expired leftovers and reports how many were removed.
	Sweep(ctx context.Context) (int64, error)

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}
