package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR backs the igbinary tag: a compact binary form that keeps maps,
// arrays, integers and byte strings distinct.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// Encoding uses CoreDetEncOptions (RFC 8949) so equal values produce
// identical bytes. Time values are encoded as RFC3339Nano.
// Dynamic targets (any) decode maps as map[string]any.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any]() (CBOR[V], error) {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := (cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error.
// Handy for package-level variables in tests.
func MustCBOR[V any]() CBOR[V] {
	c, err := NewCBOR[V]()
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, decodeErr(Igbinary, err)
}
