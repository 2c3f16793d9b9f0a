package storage

import (
	"context"
	"errors"
	"time"
)

// ErrTokenNotFound is returned when no usable token exists for a user.
// An expired token counts as not found.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore defines the interface for OAuth token persistence.
type TokenStore interface {
	// GetToken returns the bearer token for the user. A token whose expiry
	// has passed is removed and reported as ErrTokenNotFound.
	GetToken(ctx context.Context, userID int64) (string, error)

	// SaveToken stores or replaces the token for the user.
	SaveToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
