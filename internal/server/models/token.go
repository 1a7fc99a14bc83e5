package models

import "time"

// TokenRecord is what the token store keeps under a public key until the
// token is redeemed or expires.
type TokenRecord struct {
	AccountID   int64     `json:"account_id"`
	PrivateHash string    `json:"private_hash"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the record is no longer redeemable at now.
func (r *TokenRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
