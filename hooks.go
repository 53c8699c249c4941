package unicache

import c "github.com/unkn0wn-root/unicache/codec"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Provider returned ok=false on Set.
	ProviderSetRejected(storageKey string)

	// A provider call returned an error.
	// op ∈ {"get", "set", "del", "flush"}
	ProviderError(op, storageKey string, err error)

	// Stored bytes could not be decoded with the configured serializer.
	DecodeFailed(storageKey string, tag c.Tag, err error)

	// Flush succeeded; every prefix on the provider was wiped.
	Flushed(prefix string)

	// A counter held a non-numeric value and restarted from zero.
	CounterReset(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ProviderSetRejected(string)          {}
func (NopHooks) ProviderError(string, string, error) {}
func (NopHooks) DecodeFailed(string, c.Tag, error)   {}
func (NopHooks) Flushed(string)                      {}
func (NopHooks) CounterReset(string)                 {}
