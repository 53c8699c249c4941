package codec

import (
	"bytes"
	"encoding/gob"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
)

func init() {
	Register(map[string]any{})
	Register([]any{})
	Register(time.Time{})
}

// Register allows values of v's concrete type to be decoded by the native
// codec when the cache value type is an interface (such as any). Payloads
// naming any other type are rejected there.
func Register(v any) { gob.Register(v) }

type envelope struct {
	V any
}

// Gob backs the native tag, the default serializer. A concrete V is written
// as a plain gob value and needs no registration. An interface V travels
// inside an envelope so the stored bytes carry their own type name; decoding
// refuses types that were not registered. gob never runs caller code.
// Basic types (numbers, strings, bools, byte slices) are registered by gob.
type Gob[V any] struct{}

func isInterface[V any]() bool {
	return reflect.TypeOf((*V)(nil)).Elem().Kind() == reflect.Interface
}

func (Gob[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if isInterface[V]() {
		err = gob.NewEncoder(&buf).Encode(&envelope{V: v})
	} else {
		err = gob.NewEncoder(&buf).Encode(v)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode accepts both layouts, so a typed cache and an any-typed cache (or
// the counter path) can share keys.
func (Gob[V]) Decode(b []byte) (V, error) {
	if !isInterface[V]() {
		var v V
		err := gob.NewDecoder(bytes.NewReader(b)).Decode(&v)
		if err == nil {
			return v, nil
		}
		if typed, eerr := decodeEnvelope[V](b); eerr == nil {
			return typed, nil
		}
		var zero V
		return zero, decodeErr(Native, err)
	}

	typed, err := decodeEnvelope[V](b)
	if err == nil {
		return typed, nil
	}
	if plain, ok := decodeBasic(b); ok {
		if typed, ok := plain.(V); ok {
			return typed, nil
		}
	}
	var zero V
	return zero, err
}

func decodeEnvelope[V any](b []byte) (V, error) {
	var v V
	var e envelope
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return v, decodeErr(Native, err)
	}
	if e.V == nil {
		return v, nil
	}
	if typed, ok := e.V.(V); ok {
		return typed, nil
	}
	// gob keeps the sender's width; let an int64 payload fill an int target.
	src := reflect.ValueOf(e.V)
	dst := reflect.TypeOf((*V)(nil)).Elem()
	if src.Type().ConvertibleTo(dst) && isNumeric(src.Kind()) && isNumeric(dst.Kind()) {
		return src.Convert(dst).Interface().(V), nil
	}
	return v, decodeErr(Native, errors.Newf("stored %T does not fit %T", e.V, v))
}

// decodeBasic reads a plain (non-envelope) gob value of a basic kind, as
// written by a cache typed to a number, string or bool.
func decodeBasic(b []byte) (any, bool) {
	try := func(dst any) bool {
		return gob.NewDecoder(bytes.NewReader(b)).Decode(dst) == nil
	}
	var (
		i   int64
		u   uint64
		f   float64
		str string
		bl  bool
	)
	switch {
	case try(&i):
		return i, true
	case try(&u):
		return u, true
	case try(&f):
		return f, true
	case try(&str):
		return str, true
	case try(&bl):
		return bl, true
	}
	return nil, false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
