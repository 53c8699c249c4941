// Package otter is an in-process W-TinyLFU provider backed by maypok86/otter.
package otter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/maypok86/otter/v2"

	pr "github.com/unkn0wn-root/unicache/provider"
)

const DefaultMaximumSize = 10_000

// entry wraps a cached value with its expiration time (zero = none).
type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type Provider struct {
	cache *otter.Cache[string, entry]
	now   func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	MaximumSize int `yaml:"maximum_size"`
}

func New(_ context.Context, cfg Config) (*Provider, error) {
	size := cfg.MaximumSize
	if size <= 0 {
		size = DefaultMaximumSize
	}
	c, err := otter.New[string, entry](&otter.Options[string, entry]{
		MaximumSize: size,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create cache")
	}
	return &Provider{cache: c, now: time.Now}, nil
}

// Get retrieves a value if present and not expired.
func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := p.cache.GetIfPresent(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(p.now()) {
		p.cache.Invalidate(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a value with per-entry TTL.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	e := entry{data: value}
	if ttl > 0 {
		e.expiresAt = p.now().Add(ttl)
	}
	p.cache.Set(key, e)
	return true, nil
}

// Del reports whether a live entry was removed.
func (p *Provider) Del(ctx context.Context, key string) (bool, error) {
	_, ok, _ := p.Get(ctx, key)
	p.cache.Invalidate(key)
	return ok, nil
}

// Flush removes all values from the cache.
func (p *Provider) Flush(_ context.Context) (bool, error) {
	p.cache.InvalidateAll()
	return true, nil
}

func (p *Provider) Close(_ context.Context) error { return nil }
