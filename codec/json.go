package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// JSONCodec backs the json tag. Decode fills V directly, so struct targets
// come back as typed records. An unencodable value yields an empty payload
// instead of an error; reading it back fails to decode.
//
// UseNumber decodes numbers held in interface values as json.Number instead
// of float64, keeping integers above 2^53 exact.
type JSONCodec[V any] struct {
	UseNumber bool
}

func (JSONCodec[V]) Encode(v V) ([]byte, error) { return encodeJSON(v), nil }
func (c JSONCodec[V]) Decode(b []byte) (V, error) {
	var v V
	if !c.UseNumber {
		err := json.Unmarshal(b, &v)
		return v, decodeErr(JSON, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return v, decodeErr(JSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		var zero V
		return zero, decodeErr(JSON, errors.New("trailing data after json value"))
	}
	return v, nil
}

// JSONArrayCodec backs the json-array tag. It writes the same bytes as
// JSONCodec. When V is an interface type every JSON object is decoded into an
// ordered Map (source key order kept) and integral numbers into int64.
// Concrete targets decode exactly like JSONCodec.
type JSONArrayCodec[V any] struct{}

func (JSONArrayCodec[V]) Encode(v V) ([]byte, error) { return encodeJSON(v), nil }
func (JSONArrayCodec[V]) Decode(b []byte) (V, error) {
	var v V
	if reflect.TypeOf((*V)(nil)).Elem().Kind() != reflect.Interface {
		err := json.Unmarshal(b, &v)
		return v, decodeErr(JSONArray, err)
	}
	if !gjson.ValidBytes(b) {
		return v, decodeErr(JSONArray, errors.New("invalid json"))
	}
	out := ordered(gjson.ParseBytes(b))
	if out == nil {
		return v, nil
	}
	typed, ok := out.(V)
	if !ok {
		return v, decodeErr(JSONArray, errors.Newf("cannot assign %T to %T", out, v))
	}
	return typed, nil
}

func encodeJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte{}
	}
	return b
}

// Pair is one member of a decoded JSON object.
type Pair struct {
	Key   string
	Value any
}

// Map is a JSON object decoded by the json-array codec. Members keep the
// order in which they appeared in the payload.
type Map []Pair

// Get returns the value stored under key.
func (m Map) Get(key string) (any, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

func (m Map) Keys() []string {
	out := make([]string, len(m))
	for i, p := range m {
		out[i] = p.Key
	}
	return out
}

// MarshalJSON writes members in their stored order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func ordered(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := Map{}
		r.ForEach(func(k, v gjson.Result) bool {
			m = append(m, Pair{Key: k.String(), Value: ordered(v)})
			return true
		})
		return m
	case r.IsArray():
		arr := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			arr = append(arr, ordered(v))
			return true
		})
		return arr
	}
	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return r.Str
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return n
			}
		}
		return r.Num
	}
	return nil
}
