package unicache

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	c "github.com/unkn0wn-root/unicache/codec"
	"github.com/unkn0wn-root/unicache/internal/keys"
	pr "github.com/unkn0wn-root/unicache/provider"
)

type cache[V any] struct {
	prefix   string
	provider pr.Provider
	tag      c.Tag
	codec    c.Codec[V]
	dyn      c.Codec[any] // counters decode whatever is stored
	log      Logger
	hooks    Hooks

	enabled     bool
	defaultTTL  time.Duration
	concurrency int

	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	tag, err := c.ParseTag(string(opts.Serializer))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unknown serializer %q", string(opts.Serializer))
	}
	if opts.Provider == nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, "provider is required")
	}

	vc, err := c.New[V](tag)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "serializer %q: %v", string(tag), err)
	}
	dc, err := c.New[any](tag)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "serializer %q: %v", string(tag), err)
	}
	if tag == c.JSON {
		dc = c.JSONCodec[any]{UseNumber: true} // counters above 2^53 stay exact
	}
	if opts.MaxDecode > 0 {
		vc = c.Limit[V]{Inner: vc, Tag: tag, MaxDecode: opts.MaxDecode}
		dc = c.Limit[any]{Inner: dc, Tag: tag, MaxDecode: opts.MaxDecode}
	}

	cc := &cache[V]{
		prefix:      opts.Prefix,
		provider:    opts.Provider,
		tag:         tag,
		codec:       vc,
		dyn:         dc,
		enabled:     !opts.Disabled,
		concurrency: opts.MultiConcurrency,
	}

	// defaults
	cc.log = coalesce[Logger](opts.Logger, NopLogger{})
	cc.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	cc.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, DefaultTTL)

	return cc, nil
}

func (c *cache[V]) Enabled() bool     { return c.enabled }
func (c *cache[V]) Prefix() string    { return c.prefix }
func (c *cache[V]) Serializer() c.Tag { return c.tag }

// Close releases the provider once; later calls return the first result.
func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closeErr = c.provider.Close(ctx)
	})
	return c.closeErr
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	raw, ok, err := c.read(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		c.decodeFailed(key, err)
		return zero, false, errors.Wrapf(err, "unicache: get %q", key)
	}
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return false, errors.Wrapf(err, "unicache: set %q: encode", key)
	}
	return c.write(ctx, key, payload, ttl)
}

func (c *cache[V]) Delete(ctx context.Context, key string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	k := c.storageKey(key)
	ok, err := c.provider.Del(ctx, k)
	if err != nil {
		c.providerError("del", key, k, err)
		return false, &OpError{Op: "del", Key: key, Err: err}
	}
	return ok, nil
}

func (c *cache[V]) Flush(ctx context.Context) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	ok, err := c.provider.Flush(ctx)
	if err != nil {
		c.providerError("flush", "", "", err)
		return false, &OpError{Op: "flush", Err: err}
	}
	if ok {
		c.hooks.Flushed(c.prefix)
		c.log.Info("provider flushed (all prefixes)", Fields{"prefix": c.prefix})
	}
	return ok, nil
}

// read fetches raw bytes for a logical key.
func (c *cache[V]) read(ctx context.Context, key string) ([]byte, bool, error) {
	k := c.storageKey(key)
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		c.providerError("get", key, k, err)
		return nil, false, &OpError{Op: "get", Key: key, Err: err}
	}
	return raw, ok, nil
}

// write stores already-encoded bytes for a logical key.
func (c *cache[V]) write(ctx context.Context, key string, payload []byte, ttl time.Duration) (bool, error) {
	k := c.storageKey(key)
	ok, err := c.provider.Set(ctx, k, payload, c.ttl(ttl))
	if err != nil {
		c.providerError("set", key, k, err)
		return false, &OpError{Op: "set", Key: key, Err: err}
	}
	if !ok {
		c.hooks.ProviderSetRejected(k)
		c.log.Debug("set rejected by provider", Fields{"key": key})
	}
	return ok, nil
}

// ttl resolves the caller's ttl: 0 => default, negative => no expiry (0 to the provider).
func (c *cache[V]) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl < 0 {
		return 0
	}
	return ttl
}

func (c *cache[V]) storageKey(userKey string) string {
	return keys.Render(c.prefix, userKey)
}

func (c *cache[V]) providerError(op, key, storageKey string, err error) {
	c.hooks.ProviderError(op, storageKey, err)
	c.log.Warn("provider "+op+" failed", Fields{"key": key, "err": err})
}

func (c *cache[V]) decodeFailed(key string, err error) {
	c.hooks.DecodeFailed(c.storageKey(key), c.tag, err)
	c.log.Error("stored value failed to decode", Fields{"key": key, "serializer": string(c.tag), "err": err})
}
