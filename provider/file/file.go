// Package file stores entries as framed files under a root directory.
//
// Each physical key maps to <root>/<shard>/<sha256(key)>. Entries carry their
// own absolute deadline; expired entries are removed lazily on read.
package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/unkn0wn-root/unicache/internal/keys"
	"github.com/unkn0wn-root/unicache/internal/wire"
	pr "github.com/unkn0wn-root/unicache/provider"
)

// DefaultRoot is used when Config.Root is empty.
func DefaultRoot() string { return filepath.Join(os.TempDir(), "unicache") }

type Config struct {
	Root string      `yaml:"root"`
	Perm fs.FileMode `yaml:"perm"` // 0 => 0o600 files / 0o700 dirs
}

type File struct {
	root    string
	perm    fs.FileMode
	dirPerm fs.FileMode
	now     func() time.Time

	// Flush holds the write lock; per-key operations share the read lock.
	mu sync.RWMutex
}

var _ pr.Provider = (*File)(nil)

// New creates Root if needed and verifies it is writable.
func New(_ context.Context, cfg Config) (*File, error) {
	root := cfg.Root
	if root == "" {
		root = DefaultRoot()
	}
	perm, dirPerm := cfg.Perm, fs.FileMode(0o700)
	if perm == 0 {
		perm = 0o600
	} else {
		dirPerm = perm | (perm&0o444)>>2 // search bit wherever read is granted
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, &pr.ConnectError{Driver: "file", Addr: root, Err: err}
	}
	probe, err := os.CreateTemp(root, ".probe-*")
	if err != nil {
		return nil, &pr.ConnectError{Driver: "file", Addr: root, Err: err}
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return &File{root: root, perm: perm, dirPerm: dirPerm, now: time.Now}, nil
}

func (p *File) path(key string) (dir, file string) {
	shard, name := keys.FileName(key)
	dir = filepath.Join(p.root, shard)
	return dir, filepath.Join(dir, name)
}

func (p *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	_, path := p.path(key)
	b, err := os.ReadFile(path)
	p.mu.RUnlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if payload, ok := p.live(key, b); ok {
		return payload, true, nil
	}
	p.evict(key, path)
	return nil, false, nil
}

// live returns the payload when b is an unexpired entry for key.
func (p *File) live(key string, b []byte) ([]byte, bool) {
	e, err := wire.Decode(b)
	if err != nil || e.Key != key || e.Expired(p.now()) {
		return nil, false
	}
	return e.Payload, true
}

// evict removes a foreign, torn or expired file. It re-reads under the write
// lock so an entry written after the caller's read is kept.
func (p *File) evict(key, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if _, ok := p.live(key, b); ok {
		return
	}
	_ = os.Remove(path)
}

func (p *File) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var exp int64
	if ttl > 0 {
		exp = p.now().Add(ttl).UnixNano()
	}
	b, err := wire.Encode(wire.Entry{Key: key, ExpiresAt: exp, Payload: value})
	if err != nil {
		return false, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	dir, path := p.path(key)
	if err := os.MkdirAll(dir, p.dirPerm); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return false, err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return false, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Chmod(tmp.Name(), p.perm); err != nil {
		_ = os.Remove(tmp.Name())
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return false, err
	}
	return true, nil
}

// Del reports false for missing and already-expired entries.
func (p *File) Del(ctx context.Context, key string) (bool, error) {
	_, live, err := p.Get(ctx, key)
	if err != nil {
		return false, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	_, path := p.path(key)
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return live, nil
}

// Flush removes every shard directory under root.
func (p *File) Flush(_ context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ents, err := os.ReadDir(p.root)
	if err != nil {
		return false, err
	}
	for _, e := range ents {
		if err := os.RemoveAll(filepath.Join(p.root, e.Name())); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (p *File) Close(_ context.Context) error { return nil }
