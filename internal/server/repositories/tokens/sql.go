package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/magiclink/internal/common"
	"github.com/dmitrijs2005/magiclink/internal/dbx"
	"github.com/dmitrijs2005/magiclink/internal/server/models"
	"github.com/dmitrijs2005/magiclink/internal/timex"
)

// SQLRepository keeps records in the magic_tokens table. Timestamps are
// stored as Unix milliseconds so both dialects compare them numerically.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	now     timex.Clock
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect, clock timex.Clock) *SQLRepository {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &SQLRepository{db: db, dialect: dialect, now: clock}
}

// Put inserts the record, or replaces a row under the same key that has
// already expired. A live row is left alone and reported as a duplicate.
func (r *SQLRepository) Put(ctx context.Context, key string, rec *models.TokenRecord, ttl time.Duration) error {
	query := dbx.Rebind(r.dialect,
		`INSERT INTO magic_tokens (public_key, account_id, private_hash, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (public_key) DO UPDATE
		 SET account_id = excluded.account_id, private_hash = excluded.private_hash,
		     issued_at = excluded.issued_at, expires_at = excluded.expires_at
		 WHERE magic_tokens.expires_at <= $6
		 `)

	now := r.now()
	res, err := r.db.ExecContext(ctx, query,
		key, rec.AccountID, rec.PrivateHash, rec.IssuedAt.UnixMilli(), now.Add(ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("token %q: %w", key, common.ErrorAlreadyExists)
	}

	return nil
}

// Take is a single DELETE .. RETURNING, so the row is claimed by exactly one
// caller. An expired row is still consumed and then reported absent.
func (r *SQLRepository) Take(ctx context.Context, key string) (*models.TokenRecord, error) {
	query := dbx.Rebind(r.dialect,
		`DELETE FROM magic_tokens
		 WHERE public_key = $1
		 RETURNING account_id, private_hash, issued_at, expires_at
		 `)

	var issuedAt, expiresAt int64
	rec := &models.TokenRecord{}
	err := r.db.QueryRowContext(ctx, query, key).
		Scan(&rec.AccountID, &rec.PrivateHash, &issuedAt, &expiresAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.IssuedAt = time.UnixMilli(issuedAt).UTC()
	rec.ExpiresAt = time.UnixMilli(expiresAt).UTC()

	if rec.Expired(r.now()) {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (r *SQLRepository) Sweep(ctx context.Context) (int64, error) {
	query := dbx.Rebind(r.dialect,
		`DELETE FROM magic_tokens
		 WHERE expires_at <= $1
		 `)

	res, err := r.db.ExecContext(ctx, query, r.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
