package service

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore tracks which refresh tokens are still live. A refresh token
// whose record is absent is invalid even when its signature verifies; this
// is what makes logout and rotation effective revocation.
//
// Records are keyed by account id plus a hash of the token itself, so one
// account can hold several concurrent sessions (multi-device) and revoking
// one leaves the others untouched.
type SessionStore interface {
	// Put persists refreshToken as the live session value for its derived
	// key, with the refresh lifetime as TTL. Re-putting the same token is
	// an effective no-op.
	Put(ctx context.Context, accountID uuid.UUID, refreshToken string) error

	// Exists reports whether the exact (account, token) session is live.
	Exists(ctx context.Context, accountID uuid.UUID, refreshToken string) (bool, error)

	// Consume atomically checks-and-revokes the session, reporting
	// whether this caller won it. Of two concurrent consumers of the same
	// token exactly one observes true; the loser must treat the token as
	// revoked.
	Consume(ctx context.Context, accountID uuid.UUID, refreshToken string) (bool, error)

	// Revoke deletes the session record. Revoking an absent session is
	// not an error.
	Revoke(ctx context.Context, accountID uuid.UUID, refreshToken string) error
}
