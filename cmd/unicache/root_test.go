package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/unicache"
)

func writeConfig(t *testing.T, serializer string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.yaml")
	body := fmt.Sprintf(`
driver: file
prefix: "cli:"
serializer: %s
default_ttl: 1h
options:
  root: %s
`, serializer, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestSetGetDel(t *testing.T) {
	cfg := writeConfig(t, "json")

	out, err := run(t, cfg, "set", "greeting", "hello", "--ttl", "5m")
	require.NoError(t, err)
	assert.Equal(t, "true", out)

	out, err = run(t, cfg, "get", "greeting")
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, out)

	out, err = run(t, cfg, "del", "greeting", "absent")
	require.NoError(t, err)
	assert.Equal(t, "greeting\ttrue\nabsent\tfalse", out)

	_, err = run(t, cfg, "get", "greeting")
	assert.ErrorIs(t, err, errMiss)
}

func TestCounters(t *testing.T) {
	for _, tag := range []string{"json", "msgpack", "native", "igbinary", "json-array"} {
		t.Run(tag, func(t *testing.T) {
			cfg := writeConfig(t, tag)

			out, err := run(t, cfg, "incr", "hits")
			require.NoError(t, err)
			assert.Equal(t, "1", out)

			out, err = run(t, cfg, "incr", "hits", "5")
			require.NoError(t, err)
			assert.Equal(t, "6", out)

			out, err = run(t, cfg, "decr", "hits", "2")
			require.NoError(t, err)
			assert.Equal(t, "4", out)
		})
	}
}

func TestFlush(t *testing.T) {
	cfg := writeConfig(t, "json")
	_, err := run(t, cfg, "set", "a", "1")
	require.NoError(t, err)

	out, err := run(t, cfg, "flush")
	require.NoError(t, err)
	assert.Equal(t, "true", out)

	_, err = run(t, cfg, "get", "a")
	assert.ErrorIs(t, err, errMiss)
}

func TestBadInput(t *testing.T) {
	cfg := writeConfig(t, "yaml")
	_, err := run(t, cfg, "get", "a")
	assert.ErrorIs(t, err, unicache.ErrInvalidConfiguration)

	cfg = writeConfig(t, "json")
	_, err = run(t, cfg, "incr", "a", "lots")
	assert.Error(t, err)
	_, err = run(t, cfg, "set", "a", "b", "--ttl", "soon")
	assert.Error(t, err)
	_, err = run(t, cfg, "--log-level", "loud", "get", "a")
	assert.Error(t, err)
}

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"":      0,
		"90s":   90 * time.Second,
		"1d":    24 * time.Hour,
		"never": unicache.NoExpiration,
	}
	for in, want := range cases {
		got, err := parseTTL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseTTL("-5s")
	assert.Error(t, err)
}
