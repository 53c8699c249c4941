package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/unicache"
	c "github.com/unkn0wn-root/unicache/codec"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	RejectEvery uint64
	ErrorEvery  uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	rejectCtr atomic.Uint64
	errorCtr  atomic.Uint64
}

var _ unicache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil || !sample(h.opts.RejectEvery, &h.rejectCtr) {
		return
	}
	h.l.Warn("unicache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) ProviderError(op, storageKey string, err error) {
	if h.l == nil || !sample(h.opts.ErrorEvery, &h.errorCtr) {
		return
	}
	h.l.Warn("unicache.provider_error",
		"op", op,
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) DecodeFailed(storageKey string, tag c.Tag, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("unicache.decode_failed",
		"key", h.redact(storageKey),
		"serializer", string(tag),
		"err", err)
}

func (h *Hooks) Flushed(prefix string) {
	if h.l == nil {
		return
	}
	h.l.Info("unicache.flushed",
		"prefix", prefix)
}

func (h *Hooks) CounterReset(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Debug("unicache.counter_reset",
		"key", h.redact(storageKey))
}
