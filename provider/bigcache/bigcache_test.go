package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBigCache(t *testing.T) *Provider {
	t.Helper()
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute, MaxEntriesInWindow: 1000, MaxEntrySize: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(ctx) })
	return p
}

func TestBigCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestBigCache(t)

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "k", []byte("v"), time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	ok, err = p.Del(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.Del(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBigCacheFlush(t *testing.T) {
	ctx := context.Background()
	p := newTestBigCache(t)

	_, _ = p.Set(ctx, "a:k", []byte("1"), 0)
	_, _ = p.Set(ctx, "b:k", []byte("2"), 0)
	ok, err := p.Flush(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, _ = p.Get(ctx, "a:k")
	assert.False(t, ok)
	_, ok, _ = p.Get(ctx, "b:k")
	assert.False(t, ok)
}
