package unicache

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Entry is one GetMulti result.
type Entry[V any] struct {
	Key   string
	Value V
	Found bool
	Err   error
}

// Entries preserves the order of the keys passed to GetMulti.
type Entries[V any] []Entry[V]

// Map returns the found entries keyed by logical key.
func (es Entries[V]) Map() map[string]V {
	out := make(map[string]V, len(es))
	for _, e := range es {
		if e.Found {
			out[e.Key] = e.Value
		}
	}
	return out
}

// Missing returns keys that were absent (not failed), in request order.
func (es Entries[V]) Missing() []string {
	var out []string
	for _, e := range es {
		if !e.Found && e.Err == nil {
			out = append(out, e.Key)
		}
	}
	return out
}

func (c *cache[V]) GetMulti(ctx context.Context, keys []string) (Entries[V], error) {
	out := make(Entries[V], len(keys))
	c.each(len(keys), func(i int) {
		v, ok, err := c.Get(ctx, keys[i])
		out[i] = Entry[V]{Key: keys[i], Value: v, Found: ok, Err: err}
	})
	var errs map[string]error
	for _, e := range out {
		if e.Err != nil {
			if errs == nil {
				errs = make(map[string]error)
			}
			errs[e.Key] = e.Err
		}
	}
	return out, batchErr("get_multi", errs)
}

// SetMulti writes keys in sorted order (when sequential) with the same ttl.
func (c *cache[V]) SetMulti(ctx context.Context, items map[string]V, ttl time.Duration) (map[string]bool, error) {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	oks := make([]bool, len(keys))
	errs := make([]error, len(keys))
	c.each(len(keys), func(i int) {
		oks[i], errs[i] = c.Set(ctx, keys[i], items[keys[i]], ttl)
	})
	return collect("set_multi", keys, oks, errs)
}

func (c *cache[V]) DeleteMulti(ctx context.Context, keys []string) (map[string]bool, error) {
	oks := make([]bool, len(keys))
	errs := make([]error, len(keys))
	c.each(len(keys), func(i int) {
		oks[i], errs[i] = c.Delete(ctx, keys[i])
	})
	return collect("delete_multi", keys, oks, errs)
}

// each runs fn for 0..n-1, sequentially or over at most c.concurrency
// goroutines. fn must only write to its own index.
func (c *cache[V]) each(n int, fn func(i int)) {
	if c.concurrency <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func collect(op string, keys []string, oks []bool, errs []error) (map[string]bool, error) {
	out := make(map[string]bool, len(keys))
	var failed map[string]error
	for i, k := range keys {
		out[k] = oks[i]
		if errs[i] != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[k] = errs[i]
		}
	}
	return out, batchErr(op, failed)
}
