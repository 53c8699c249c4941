// Package unicache implements a uniform cache facade over interchangeable
// byte-store providers (Redis, Memcached, local files, in-process caches),
// with the value serializer chosen once per instance from a fixed tag set.
//
// Components:
//   - Provider: byte store with TTL (see package provider and its subpackages).
//   - Codec[V]: (de)serializes V <-> []byte, selected by codec.Tag.
//   - Key rendering: physical key = Prefix + logical key.
//
// Multi-key and counter operations are composed from single-key provider
// calls, so they behave the same on every backend:
//
//	c, _ := unicache.New[User](unicache.Options[User]{
//	    Prefix:     "app:user:",
//	    Provider:   rdb, // e.g. redis.New(ctx, redis.Config{})
//	    Serializer: codec.Msgpack,
//	})
//	defer c.Close(ctx)
//	_, _ = c.Set(ctx, "42", u, 0) // 0 => DefaultTTL
//	u, ok, err := c.Get(ctx, "42")
//
// Increment and Decrement are read-modify-write over two provider calls and
// are not atomic; concurrent writers to the same counter can lose updates.
//
// Flush is provider-wide: it removes entries written under every prefix.
package unicache
