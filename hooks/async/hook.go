// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/unicache"
//	"github.com/unkn0wn-root/unicache/codec"
//	"github.com/unkn0wn-root/unicache/hooks/async"
//	"github.com/unkn0wn-root/unicache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    RejectEvery: 10, // sample logs: ~every 10th rejected set
//	    ErrorEvery:  1,  // log every provider error
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	cache, _ := unicache.New[User](unicache.Options[User]{
//	    Prefix:     "app:prod:user:",
//	    Provider:   provider,
//	    Serializer: codec.JSON,
//	    Hooks:      hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/unicache"
	c "github.com/unkn0wn-root/unicache/codec"
)

type Hooks struct {
	inner   unicache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards q against send-after-close
	closed  bool
	dropped atomic.Uint64
}

var _ unicache.Hooks = (*Hooks)(nil)

func New(inner unicache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) Flushed(p string)             { h.try(func() { h.inner.Flushed(p) }) }
func (h *Hooks) CounterReset(k string)        { h.try(func() { h.inner.CounterReset(k) }) }
func (h *Hooks) ProviderError(op, k string, err error) {
	h.try(func() { h.inner.ProviderError(op, k, err) })
}
func (h *Hooks) DecodeFailed(k string, tag c.Tag, err error) {
	h.try(func() { h.inner.DecodeFailed(k, tag, err) })
}
