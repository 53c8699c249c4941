// Package codec maps a serializer tag to the encode/decode pair used for every
// value that passes through a unicache instance.
//
// The tag set is closed: igbinary, json, json-array, msgpack and native.
// New is the single dispatch point, so adding a serializer means adding a Tag
// constant and one case to New.
package codec

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Tag identifies a serializer. The string values are stable.
type Tag string

const (
	Igbinary  Tag = "igbinary"   // compact self-describing binary (CBOR)
	JSON      Tag = "json"       // UTF-8 JSON, decodes into typed values
	JSONArray Tag = "json-array" // JSON, dynamic objects decode into ordered Map
	Msgpack   Tag = "msgpack"
	Native    Tag = "native" // gob envelope; only registered types decode
)

// Default is used when no serializer is configured.
const Default = Native

var ErrUnknownTag = errors.New("codec: unknown serializer")

// Tags lists every recognized serializer in a stable order.
func Tags() []Tag {
	return []Tag{Igbinary, JSON, JSONArray, Msgpack, Native}
}

// Valid reports whether t is one of the recognized serializers.
func (t Tag) Valid() bool {
	switch t {
	case Igbinary, JSON, JSONArray, Msgpack, Native:
		return true
	}
	return false
}

func (t Tag) String() string { return string(t) }

// ParseTag resolves a configured serializer name. Empty selects Default and
// "php" is accepted as an alias of Native.
func ParseTag(s string) (Tag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return Default, nil
	case "php":
		return Native, nil
	}
	t := Tag(s)
	if !t.Valid() {
		return "", errors.Wrapf(ErrUnknownTag, "%q", s)
	}
	return t, nil
}

// New returns the codec for tag t.
func New[V any](t Tag) (Codec[V], error) {
	switch t {
	case Igbinary:
		return NewCBOR[V]()
	case JSON:
		return JSONCodec[V]{}, nil
	case JSONArray:
		return JSONArrayCodec[V]{}, nil
	case Msgpack:
		return MsgpackCodec[V]{}, nil
	case Native:
		return Gob[V]{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownTag, "%q", string(t))
}
