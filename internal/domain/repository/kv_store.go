package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned when a key is absent or its TTL has elapsed.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the generic TTL key-value contract backing session and OTP
// records. Keys follow the `<service>:<item>:<identifier>` scheme produced
// by the infra key builder; no consumer ever scans outside its own derived
// keys, so key-space partitioning is the isolation mechanism.
//
// All operations are atomic per key on the backing store. GetDel and
// CompareAndDelete exist so callers can close check-then-act races without
// any in-process locking.
type KVStore interface {
	// Set writes value under key with the given TTL, overwriting any
	// previous value and TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or ErrKeyNotFound if absent/expired.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key and reports whether it existed. Deleting an
	// absent key is not an error.
	Delete(ctx context.Context, key string) (bool, error)

	// GetDel atomically reads and removes key, returning ErrKeyNotFound
	// if it was absent. Exactly one of N concurrent callers observes the
	// value.
	GetDel(ctx context.Context, key string) (string, error)

	// CompareAndDelete removes key only if its current value equals
	// expected, reporting whether the delete happened. Absent keys and
	// mismatches both report false without error.
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}
