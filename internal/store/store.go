// Package store provides session persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/voyago/voyago/internal/domain"
)

// ErrUnavailable wraps backend connectivity failures. A request cannot
// proceed without session state, so handlers surface this as a 503.
var ErrUnavailable = errors.New("session store unavailable")

// SessionStore persists per-conversation state with an idle TTL. All session
// mutation is read-modify-write by the dialogue manager; the store performs
// no merge logic.
type SessionStore interface {
	// Get retrieves a session by id. Returns (nil, nil) when the session is
	// absent or expired; an absent session is not an error.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Put stores a session, resetting its idle TTL.
	Put(ctx context.Context, session *domain.Session, ttl time.Duration) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// DeleteAllForUser removes every session owned by a user and returns the
	// number deleted.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)

	// Ping verifies backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
