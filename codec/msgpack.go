package codec

import "github.com/vmihailenco/msgpack/v5"

// MsgpackCodec is a Codec that serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Be mindful of struct tag differences vs JSON.
// Use `msgpack:"fieldName"` tags if you need explicit control.
type MsgpackCodec[V any] struct{}

func (MsgpackCodec[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackCodec[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, decodeErr(Msgpack, err)
}
