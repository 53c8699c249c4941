// Package redis is the reference networked provider, backed by go-redis.
package redis

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/unicache/provider"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 6379
)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	// Client, when set, is used as-is and Host/Port/Password/DB/Timeout are ignored.
	Client      goredis.UniversalClient `yaml:"-"`
	CloseClient bool                    `yaml:"-"` // set true only if this provider exclusively owns Client

	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Timeout  time.Duration `yaml:"timeout"` // dial/read/write; 0 keeps go-redis defaults
}

// New connects eagerly: the server is PINGed before New returns. A client
// dialed by New is owned by the provider and closed again if the PING fails.
func New(ctx context.Context, cfg Config) (*Redis, error) {
	rdb, owned, addr := cfg.Client, cfg.CloseClient, "client"
	if rdb == nil {
		host, port := cfg.Host, cfg.Port
		if host == "" {
			host = DefaultHost
		}
		if port == 0 {
			port = DefaultPort
		}
		addr = net.JoinHostPort(host, strconv.Itoa(port))
		opts := &goredis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
		if cfg.Timeout > 0 {
			opts.DialTimeout = cfg.Timeout
			opts.ReadTimeout = cfg.Timeout
			opts.WriteTimeout = cfg.Timeout
		}
		rdb, owned = goredis.NewClient(opts), true
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		if owned {
			_ = rdb.Close()
		}
		return nil, &pr.ConnectError{Driver: "redis", Addr: addr, Err: err}
	}
	return &Redis{rdb: rdb, closeClient: owned}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // no expiry
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) (bool, error) {
	n, err := p.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Flush runs FLUSHDB: every key in the selected database is removed,
// including keys written by other prefixes or other applications.
func (p *Redis) Flush(ctx context.Context) (bool, error) {
	if err := p.rdb.FlushDB(ctx).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
