package unicache

import (
	"context"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

func (c *cache[V]) Increment(ctx context.Context, key string, offset int64, ttl time.Duration) (int64, error) {
	return c.add(ctx, key, abs(offset), ttl)
}

func (c *cache[V]) Decrement(ctx context.Context, key string, offset int64, ttl time.Duration) (int64, error) {
	return c.add(ctx, key, -abs(offset), ttl)
}

// add is get + set over two provider round-trips. Concurrent callers on the
// same key can both read the old value; the last write wins.
func (c *cache[V]) add(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	if !c.enabled {
		return delta, nil
	}
	cur, err := c.counter(ctx, key)
	if err != nil {
		return 0, err
	}
	next := cur + delta
	payload, err := c.dyn.Encode(next)
	if err != nil {
		return 0, errors.Wrapf(err, "unicache: counter %q: encode", key)
	}
	if _, err := c.write(ctx, key, payload, ttl); err != nil {
		return 0, err
	}
	return next, nil
}

// counter reads key as an integer. Missing and non-numeric values count as 0;
// undecodable bytes are an error.
func (c *cache[V]) counter(ctx context.Context, key string) (int64, error) {
	raw, ok, err := c.read(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	v, err := c.dyn.Decode(raw)
	if err != nil {
		c.decodeFailed(key, err)
		return 0, errors.Wrapf(err, "unicache: counter %q", key)
	}
	n, numeric := toInt64(v)
	if !numeric {
		c.hooks.CounterReset(c.storageKey(key))
		c.log.Debug("counter held a non-numeric value; restarting from 0", Fields{"key": key})
	}
	return n, nil
}

// toInt64 coerces a decoded value to an integer. Floats truncate toward zero;
// strings count when they parse as a number after trimming spaces.
func toInt64(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt64(rv.Float())
	case reflect.String: // includes json.Number
		s := strings.TrimSpace(rv.String())
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt64(f)
		}
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(f), true
}

func abs(n int64) int64 {
	if n < 0 {
		if n == math.MinInt64 {
			return math.MaxInt64
		}
		return -n
	}
	return n
}
