// Package ristretto is an in-process provider backed by dgraph-io/ristretto.
package ristretto

import (
	"context"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/unicache/provider"
)

const (
	DefaultNumCounters = 1_000_000
	DefaultMaxCost     = 1 << 26
	DefaultBufferItems = 64
)

// CostFunc weighs an entry against MaxCost. The default charges 1 per entry.
type CostFunc func(key string, value []byte) int64

type Provider struct {
	c    *rc.Cache
	cost CostFunc
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64    `yaml:"num_counters"`
	MaxCost     int64    `yaml:"max_cost"`
	BufferItems int64    `yaml:"buffer_items"`
	Metrics     bool     `yaml:"metrics"`
	Cost        CostFunc `yaml:"-"`
}

func New(_ context.Context, cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = DefaultNumCounters
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = DefaultMaxCost
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = DefaultBufferItems
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(string, []byte) int64 { return 1 }
	}
	return &Provider{c: c, cost: cost}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		p.c.Wait()
		return nil, false, nil
	}
	return b, true, nil
}

// Set returns false when ristretto drops the write (contention or admission).
// It waits for the write buffer to drain so a following Get observes it.
func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	ok := p.c.SetWithTTL(key, value, p.cost(key, value), ttl)
	p.c.Wait()
	return ok, nil
}

// Del reports whether a live entry existed. ristretto's Del does not say,
// so presence is checked first.
func (p *Provider) Del(_ context.Context, key string) (bool, error) {
	_, ok := p.c.Get(key)
	p.c.Del(key)
	p.c.Wait()
	return ok, nil
}

func (p *Provider) Flush(_ context.Context) (bool, error) {
	p.c.Clear()
	return true, nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
