// Package keys turns logical cache keys into the physical keys a provider sees.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
)

// Render prepends prefix to key. An empty prefix leaves key unchanged.
func Render(prefix, key string) string {
	return prefix + key
}

// FileName maps a physical key to a fixed-length, filesystem-safe name.
// The first two hex chars are returned separately to shard entries into
// subdirectories.
func FileName(physicalKey string) (shard, name string) {
	sum := sha256.Sum256([]byte(physicalKey))
	name = hex.EncodeToString(sum[:])
	return name[:2], name
}
