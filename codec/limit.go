package codec

import "github.com/cockroachdb/errors"

// Limit wraps another codec to enforce a maximum allowed payload size
// at Decode time. Encode is forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: protect against oversized inputs coming from a backend
// shared with other writers.
type Limit[V any] struct {
	Inner     Codec[V]
	Tag       Tag // reported in DecodeError
	MaxDecode int // bytes
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, decodeErr(c.Tag, errors.Newf("payload too large: %d > %d", len(b), c.MaxDecode))
	}
	return c.Inner.Decode(b)
}
