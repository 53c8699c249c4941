// Package backend builds providers and caches from configuration: it owns the
// driver registry, the per-driver option defaults and the merge of caller
// options over them.
package backend

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/unkn0wn-root/unicache"
	c "github.com/unkn0wn-root/unicache/codec"
	"github.com/unkn0wn-root/unicache/config"
	pr "github.com/unkn0wn-root/unicache/provider"
	"github.com/unkn0wn-root/unicache/provider/bigcache"
	"github.com/unkn0wn-root/unicache/provider/file"
	"github.com/unkn0wn-root/unicache/provider/memcache"
	"github.com/unkn0wn-root/unicache/provider/otter"
	"github.com/unkn0wn-root/unicache/provider/redis"
	"github.com/unkn0wn-root/unicache/provider/ristretto"
)

// Driver names accepted in config.Config.Driver.
const (
	Redis     = "redis"
	Memcached = "memcached"
	File      = "file"
	Ristretto = "ristretto"
	BigCache  = "bigcache"
	Otter     = "otter"
)

type driver struct {
	defaults func() map[string]any
	open     func(ctx context.Context, opts map[string]any) (pr.Provider, error)
}

var drivers = map[string]driver{
	Redis: {
		defaults: func() map[string]any {
			return map[string]any{"host": redis.DefaultHost, "port": redis.DefaultPort, "timeout": time.Duration(0)}
		},
		open: func(ctx context.Context, opts map[string]any) (pr.Provider, error) {
			var cfg redis.Config
			return openWith(opts, &cfg, func() (pr.Provider, error) { return asProvider(redis.New(ctx, cfg)) })
		},
	},
	Memcached: {
		defaults: func() map[string]any {
			return map[string]any{"servers": []any{memcache.DefaultServer}, "timeout": time.Duration(0)}
		},
		open: func(ctx context.Context, opts map[string]any) (pr.Provider, error) {
			var cfg memcache.Config
			return openWith(opts, &cfg, func() (pr.Provider, error) { return asProvider(memcache.New(ctx, cfg)) })
		},
	},
	File: {
		defaults: func() map[string]any {
			return map[string]any{"root": file.DefaultRoot()}
		},
		open: func(ctx context.Context, opts map[string]any) (pr.Provider, error) {
			var cfg file.Config
			return openWith(opts, &cfg, func() (pr.Provider, error) { return asProvider(file.New(ctx, cfg)) })
		},
	},
	Ristretto: {
		defaults: func() map[string]any {
			return map[string]any{
				"num_counters": ristretto.DefaultNumCounters,
				"max_cost":     ristretto.DefaultMaxCost,
				"buffer_items": ristretto.DefaultBufferItems,
			}
		},
		open: func(ctx context.Context, opts map[string]any) (pr.Provider, error) {
			var cfg ristretto.Config
			return openWith(opts, &cfg, func() (pr.Provider, error) { return asProvider(ristretto.New(ctx, cfg)) })
		},
	},
	BigCache: {
		defaults: func() map[string]any {
			return map[string]any{"life_window": bigcache.DefaultLifeWindow}
		},
		open: func(ctx context.Context, opts map[string]any) (pr.Provider, error) {
			var cfg bigcache.Config
			return openWith(opts, &cfg, func() (pr.Provider, error) { return asProvider(bigcache.New(ctx, cfg)) })
		},
	},
	Otter: {
		defaults: func() map[string]any {
			return map[string]any{"maximum_size": otter.DefaultMaximumSize}
		},
		open: func(ctx context.Context, opts map[string]any) (pr.Provider, error) {
			var cfg otter.Config
			return openWith(opts, &cfg, func() (pr.Provider, error) { return asProvider(otter.New(ctx, cfg)) })
		},
	},
}

// openWith decodes opts into cfg and then dials. A decode failure is a
// configuration error and never reaches the backend.
func openWith(opts map[string]any, cfg any, dial func() (pr.Provider, error)) (pr.Provider, error) {
	if err := config.Decode(opts, cfg); err != nil {
		return nil, errors.Wrapf(unicache.ErrInvalidConfiguration, "%v", err)
	}
	return dial()
}

// asProvider keeps a failed constructor from returning a non-nil interface
// around a nil pointer.
func asProvider[P pr.Provider](p P, err error) (pr.Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Drivers lists the registered driver names, sorted.
func Drivers() []string {
	out := make([]string, 0, len(drivers))
	for name := range drivers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func lookup(name string) (driver, error) {
	d, ok := drivers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return driver{}, errors.Wrapf(unicache.ErrInvalidConfiguration,
			"unknown driver %q (want one of %s)", name, strings.Join(Drivers(), ", "))
	}
	return d, nil
}

// Defaults returns a fresh copy of the driver's default options.
func Defaults(name string) (map[string]any, error) {
	d, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return d.defaults(), nil
}

// Open merges opts over the driver defaults and connects. Connection
// failures match unicache.ErrConnection.
func Open(ctx context.Context, name string, opts map[string]any) (pr.Provider, error) {
	d, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return d.open(ctx, config.Merge(d.defaults(), opts))
}

// NewCache validates cfg, opens its driver and builds the facade. The
// serializer and driver are checked before any connection is attempted. tune
// may adjust the options (logger, hooks) before construction.
func NewCache[V any](ctx context.Context, cfg config.Config, tune ...func(*unicache.Options[V])) (_ unicache.Cache[V], err error) {
	tag, err := c.ParseTag(cfg.Serializer)
	if err != nil {
		return nil, errors.Wrapf(unicache.ErrInvalidConfiguration, "serializer: %v", err)
	}
	if _, err := lookup(cfg.Driver); err != nil {
		return nil, err
	}

	p, err := Open(ctx, cfg.Driver, cfg.Options)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = p.Close(ctx)
		}
	}()

	opts := unicache.Options[V]{
		Provider:         p,
		Prefix:           cfg.Prefix,
		Serializer:       tag,
		DefaultTTL:       cfg.DefaultTTL.Std(),
		MaxDecode:        cfg.MaxDecode,
		MultiConcurrency: cfg.MultiConcurrency,
		Disabled:         cfg.Disabled,
	}
	for _, fn := range tune {
		fn(&opts)
	}
	return unicache.New[V](opts)
}
