// Package options declares the named option store: small string settings
// shared by every magiclink process, such as the endpoint secret and the
// capability flag.
package options

import "context"

// Repository reads and writes named string options.
type Repository interface {
	// Get returns the value of name, or common.ErrorNotFound.
	Get(ctx context.Context, name string) (string, error)

	// AddIfAbsent stores value under name unless the option already exists,
	// and returns whichever value is stored afterwards. Concurrent callers
	// all observe the same winning value.
	AddIfAbsent(ctx context.Context, name, value string) (string, error)

	// Set stores value under name unconditionally.
	Set(ctx context.Context, name, value string) error
}
