// Package common defines shared constants and sentinel errors used across
// the CLI and server layers of magiclink. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Wraps any backing store or registry failure.
	ErrStorageFault = errors.New("storage fault")

	// Issuance errors.
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidLocator      = errors.New("invalid account locator")
	ErrCapabilityNotActive = errors.New("magic login capability is not active")
	ErrInvalidToggleValue  = errors.New("invalid toggle value")
	ErrLaunchFailed        = errors.New("launch failed")

	// Redemption errors. Every rejection cause collapses into this one.
	ErrRedemptionRejected = errors.New("redemption rejected")

	// Session token errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
