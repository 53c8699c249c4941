package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/unicache"
	c "github.com/unkn0wn-root/unicache/codec"
)

type countingHooks struct {
	unicache.NopHooks
	mu    sync.Mutex
	calls []string
	block chan struct{}
}

func (h *countingHooks) record(s string) {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.calls = append(h.calls, s)
	h.mu.Unlock()
}

func (h *countingHooks) ProviderSetRejected(k string)            { h.record("rejected:" + k) }
func (h *countingHooks) ProviderError(op, k string, _ error)     { h.record("error:" + op + ":" + k) }
func (h *countingHooks) DecodeFailed(k string, _ c.Tag, _ error) { h.record("decode:" + k) }

func TestDeliversBeforeClose(t *testing.T) {
	inner := &countingHooks{}
	h := New(inner, 2, 16)
	h.ProviderSetRejected("a")
	h.ProviderError("get", "b", errors.New("x"))
	h.DecodeFailed("c", c.JSON, errors.New("y"))
	h.Close()

	if len(inner.calls) != 3 {
		t.Fatalf("expected 3 delivered events, got %v", inner.calls)
	}
	if h.Dropped() != 0 {
		t.Fatalf("nothing should be dropped, got %d", h.Dropped())
	}
}

func TestDropsWhenFullAndAfterClose(t *testing.T) {
	inner := &countingHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// One event is held by the worker, one fills the queue; the rest drop.
	for i := 0; i < 10; i++ {
		h.ProviderSetRejected("k")
	}
	if h.Dropped() < 8 {
		t.Fatalf("expected at least 8 drops, got %d", h.Dropped())
	}
	close(inner.block)
	h.Close()

	before := h.Dropped()
	h.Flushed("p")
	if h.Dropped() != before+1 {
		t.Fatalf("event after Close should be dropped")
	}
	h.Close() // idempotent
}
