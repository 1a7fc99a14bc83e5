// Package common contains shared constants and sentinel errors used across
// magiclink components.
package common

const (
	// EndpointOptionName is the option holding the current endpoint secret.
	EndpointOptionName = "magic_login_endpoint"

	// CapabilityOptionName is the option holding the redemption capability flag.
	CapabilityOptionName = "magic_login_enabled"

	// TokenKeyPrefix namespaces token records in key-value backends.
	TokenKeyPrefix = "magic-login/"

	// SessionCookieName carries the session token issued after a redemption.
	SessionCookieName = "magiclink_session"
)
