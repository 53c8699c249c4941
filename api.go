package unicache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/unicache/codec"
	pr "github.com/unkn0wn-root/unicache/provider"
)

const (
	// DefaultTTL applies when a write passes ttl == 0.
	DefaultTTL = 60 * time.Second

	// NoExpiration asks the provider to keep the entry until deleted or
	// evicted. How long entries actually live is provider-specific.
	NoExpiration time.Duration = -1
)

// Cache is the provider-agnostic facade. V is the caller's value type;
// serialization is handled by the codec selected in Options.Serializer.
type Cache[V any] interface {
	Enabled() bool
	Prefix() string
	Serializer() c.Tag
	Close(context.Context) error

	// Single
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)

	// Multi: per-key, independent, no atomicity across keys.
	GetMulti(ctx context.Context, keys []string) (Entries[V], error)
	SetMulti(ctx context.Context, items map[string]V, ttl time.Duration) (map[string]bool, error)
	DeleteMulti(ctx context.Context, keys []string) (map[string]bool, error)

	// Flush removes every entry in the provider, not only this prefix.
	Flush(ctx context.Context) (bool, error)

	// Counters: read-modify-write, not atomic. |offset| is applied.
	Increment(ctx context.Context, key string, offset int64, ttl time.Duration) (int64, error)
	Decrement(ctx context.Context, key string, offset int64, ttl time.Duration) (int64, error)
}

// Options tune the cache. Only Provider is required.
type Options[V any] struct {
	Provider   pr.Provider
	Prefix     string // prepended to every key; empty => none
	Serializer c.Tag  // empty => codec.Native; "php" is an alias of native

	Logger           Logger        // nil => NopLogger
	Hooks            Hooks         // nil => NopHooks
	DefaultTTL       time.Duration // 0 => 60s
	MaxDecode        int           // bytes; 0 => unlimited
	MultiConcurrency int           // <= 1 => multi ops run sequentially
	Disabled         bool          // default false (enabled)
}

// New validates the serializer before anything else, so an unknown tag is
// reported without touching the provider.
func New[V any](opts Options[V]) (Cache[V], error) {
	cc, err := newCache[V](opts)
	if err != nil {
		return nil, err
	}
	return cc, nil
}
