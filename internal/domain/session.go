package domain

import (
	"context"
	"time"
)

// SessionStore keeps server-side sessions keyed by an opaque identifier.
// Get returns ErrNotFound for unknown or expired identifiers.
type SessionStore interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Get(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}
