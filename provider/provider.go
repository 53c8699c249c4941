// Package provider defines the storage abstraction used by unicache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata visible to the caller, no re-encoding, no mutation).
//
// Keys reaching a provider are already rendered (prefix applied). Flush is
// backend-wide and is not limited to any prefix.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrConnection is wrapped by every provider constructor that fails to reach
// its backend.
var ErrConnection = errors.New("provider: connection failed")

// Provider is a minimal byte store with TTLs.
// Connection happens in the implementation's constructor; Close releases it.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	// Returns ok=false when the store rejected the write.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Del removes a key. ok=false when the key did not exist.
	Del(ctx context.Context, key string) (ok bool, err error)

	// Flush removes every entry the backend holds.
	Flush(ctx context.Context) (ok bool, err error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// ConnectError reports a failed eager connection to Addr.
type ConnectError struct {
	Driver string
	Addr   string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s: connect %s: %v", e.Driver, e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool { return target == ErrConnection }
