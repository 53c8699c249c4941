// Package memcache adapts bradfitz/gomemcache to the provider contract.
package memcache

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	pr "github.com/unkn0wn-root/unicache/provider"
)

const DefaultServer = "127.0.0.1:11211"

// memcached reads expirations above 30 days as absolute unix timestamps.
const relativeLimit = 30 * 24 * time.Hour

type Memcache struct {
	c *memcache.Client
}

var _ pr.Provider = (*Memcache)(nil)

type Config struct {
	Servers      []string      `yaml:"servers"`        // default DefaultServer
	Timeout      time.Duration `yaml:"timeout"`        // 0 keeps the client default
	MaxIdleConns int           `yaml:"max_idle_conns"` // 0 keeps the client default
}

// New connects eagerly: every server is pinged before New returns.
func New(_ context.Context, cfg Config) (*Memcache, error) {
	servers := cfg.Servers
	if len(servers) == 0 {
		servers = []string{DefaultServer}
	}
	c := memcache.New(servers...)
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxIdleConns > 0 {
		c.MaxIdleConns = cfg.MaxIdleConns
	}
	if err := c.Ping(); err != nil {
		_ = c.Close()
		return nil, &pr.ConnectError{Driver: "memcache", Addr: strings.Join(servers, ","), Err: err}
	}
	return &Memcache{c: c}, nil
}

func (p *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	it, err := p.c.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

func (p *Memcache) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	err := p.c.Set(&memcache.Item{Key: key, Value: value, Expiration: expiration(ttl, time.Now())})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcache) Del(_ context.Context, key string) (bool, error) {
	err := p.c.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Flush runs flush_all on every server.
func (p *Memcache) Flush(_ context.Context) (bool, error) {
	if err := p.c.FlushAll(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memcache) Close(_ context.Context) error {
	return p.c.Close()
}

// expiration converts ttl to memcached's Expiration field: whole seconds
// rounded up, absolute unix time past 30 days, 0 for no expiry.
func expiration(ttl time.Duration, now time.Time) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > relativeLimit {
		abs := now.Add(ttl).Unix()
		if abs > math.MaxInt32 {
			return math.MaxInt32
		}
		return int32(abs)
	}
	return int32(math.Ceil(ttl.Seconds()))
}
