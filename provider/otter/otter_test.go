package otter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOtterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{MaximumSize: 100})
	require.NoError(t, err)
	defer p.Close(ctx)

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "k", []byte("v"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	ok, _ = p.Del(ctx, "k")
	assert.True(t, ok)
	ok, _ = p.Del(ctx, "k")
	assert.False(t, ok)
}

func TestOtterExpiry(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{})
	require.NoError(t, err)
	now := time.Now()
	p.now = func() time.Time { return now }

	_, _ = p.Set(ctx, "short", []byte("x"), time.Second)
	_, _ = p.Set(ctx, "forever", []byte("y"), 0)
	now = now.Add(time.Hour)

	_, ok, _ := p.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = p.Get(ctx, "forever")
	assert.True(t, ok)
	ok, _ = p.Del(ctx, "short")
	assert.False(t, ok, "expired entries do not count as deleted")
}

func TestOtterFlush(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{})
	require.NoError(t, err)

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
