package codec

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

type profile struct {
	ID    string   `json:"id" msgpack:"id" cbor:"id"`
	Name  string   `json:"name" msgpack:"name" cbor:"name"`
	Tags  []string `json:"tags" msgpack:"tags" cbor:"tags"`
	Score int64    `json:"score" msgpack:"score" cbor:"score"`
}

func TestParseTag(t *testing.T) {
	cases := map[string]Tag{
		"":           Native,
		"php":        Native,
		"native":     Native,
		"JSON":       JSON,
		" msgpack ":  Msgpack,
		"json-array": JSONArray,
		"igbinary":   Igbinary,
	}
	for in, want := range cases {
		got, err := ParseTag(in)
		if err != nil {
			t.Fatalf("ParseTag(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseTag(%q)=%q want %q", in, got, want)
		}
	}
	if _, err := ParseTag("yaml"); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
	if _, err := New[any](Tag("yaml")); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("New with unknown tag: %v", err)
	}
}

func TestStructRoundTripEveryTag(t *testing.T) {
	v := profile{ID: "1", Name: "Ada", Tags: []string{"a", "b"}, Score: 42}
	for _, tag := range Tags() {
		c, err := New[profile](tag)
		if err != nil {
			t.Fatalf("%s: New: %v", tag, err)
		}
		b, err := c.Encode(v)
		if err != nil {
			t.Fatalf("%s: Encode: %v", tag, err)
		}
		got, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s: Decode: %v", tag, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("%s: got %+v want %+v", tag, got, v)
		}
	}
}

func TestScalarRoundTripEveryTag(t *testing.T) {
	for _, tag := range Tags() {
		s, _ := New[string](tag)
		b, err := s.Encode("héllo")
		if err != nil {
			t.Fatalf("%s: %v", tag, err)
		}
		if got, err := s.Decode(b); err != nil || got != "héllo" {
			t.Fatalf("%s: string got %q err=%v", tag, got, err)
		}

		n, _ := New[int64](tag)
		b, err = n.Encode(math.MaxInt64)
		if err != nil {
			t.Fatalf("%s: %v", tag, err)
		}
		if got, err := n.Decode(b); err != nil || got != math.MaxInt64 {
			t.Fatalf("%s: int64 got %d err=%v", tag, got, err)
		}
	}
}

func TestCorruptBytesFailWithDeserializationError(t *testing.T) {
	junk := []byte{0xc1, 0xff, 0x00, '{'}
	for _, tag := range Tags() {
		c, _ := New[profile](tag)
		_, err := c.Decode(junk)
		if err == nil {
			t.Fatalf("%s: expected decode error", tag)
		}
		if !errors.Is(err, ErrDeserialization) {
			t.Fatalf("%s: error %v does not match ErrDeserialization", tag, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) || de.Tag != tag {
			t.Fatalf("%s: expected DecodeError with tag, got %v", tag, err)
		}
	}
}

func TestJSONEncodeFailureYieldsEmptyPayload(t *testing.T) {
	for _, tag := range []Tag{JSON, JSONArray} {
		c, _ := New[any](tag)
		b, err := c.Encode(func() {})
		if err != nil {
			t.Fatalf("%s: encode should not fail, got %v", tag, err)
		}
		if len(b) != 0 {
			t.Fatalf("%s: expected empty payload, got %q", tag, b)
		}
		if _, err := c.Decode(b); !errors.Is(err, ErrDeserialization) {
			t.Fatalf("%s: decoding empty payload should fail, got %v", tag, err)
		}
	}
}

func TestJSONArrayDecodesOrderedMap(t *testing.T) {
	c := JSONArrayCodec[any]{}
	v, err := c.Decode([]byte(`{"z":1,"a":{"y":2.5,"b":[true,null,"s"]}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m, ok := v.(Map)
	if !ok {
		t.Fatalf("expected Map, got %T", v)
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Fatalf("key order lost: %v", got)
	}
	if z, _ := m.Get("z"); z != int64(1) {
		t.Fatalf("z=%#v", z)
	}
	inner, _ := m.Get("a")
	im := inner.(Map)
	if y, _ := im.Get("y"); y != 2.5 {
		t.Fatalf("y=%#v", y)
	}
	arr, _ := im.Get("b")
	if !reflect.DeepEqual(arr, []any{true, nil, "s"}) {
		t.Fatalf("b=%#v", arr)
	}

	// re-encoding keeps member order
	b, _ := c.Encode(m)
	if string(b) != `{"z":1,"a":{"y":2.5,"b":[true,null,"s"]}}` {
		t.Fatalf("re-encoded %s", b)
	}
}

func TestJSONDecodesDynamicObjectsAsPlainMaps(t *testing.T) {
	v, err := JSONCodec[any]{}.Decode([]byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(map[string]any); !ok {
		t.Fatalf("expected map[string]any, got %T", v)
	}
}

func TestNativeRejectsUnregisteredTypes(t *testing.T) {
	type secret struct{ Cmd string }
	if _, err := (Gob[any]{}).Encode(secret{Cmd: "rm"}); err == nil {
		t.Fatalf("expected encode of unregistered type to fail")
	}
}

func TestNativeStructNeedsNoRegistration(t *testing.T) {
	type order struct {
		ID    string
		Lines []string
		Total float64
	}
	v := order{ID: "o-1", Lines: []string{"a"}, Total: 9.5}
	b, err := Gob[order]{}.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Gob[order]{}.Decode(b)
	if err != nil || !reflect.DeepEqual(got, v) {
		t.Fatalf("got %+v err=%v", got, err)
	}
}

func TestNativeTypedAndDynamicShareBytes(t *testing.T) {
	// typed writer, dynamic reader
	b, err := Gob[int64]{}.Encode(41)
	if err != nil {
		t.Fatal(err)
	}
	v, err := Gob[any]{}.Decode(b)
	if err != nil || v != int64(41) {
		t.Fatalf("dynamic decode of typed bytes: %v (%T) err=%v", v, v, err)
	}

	// dynamic writer, typed reader
	b, err = Gob[any]{}.Encode(int64(42))
	if err != nil {
		t.Fatal(err)
	}
	n, err := Gob[int64]{}.Decode(b)
	if err != nil || n != 42 {
		t.Fatalf("typed decode of dynamic bytes: %d err=%v", n, err)
	}

	s, err := Gob[string]{}.Encode("hi")
	if err != nil {
		t.Fatal(err)
	}
	if v, err := (Gob[any]{}).Decode(s); err != nil || v != "hi" {
		t.Fatalf("dynamic decode of typed string: %v err=%v", v, err)
	}
}

func TestNativeWidensIntegers(t *testing.T) {
	b, err := Gob[int64]{}.Encode(7)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Gob[int]{}.Decode(b)
	if err != nil || got != 7 {
		t.Fatalf("got %d err=%v", got, err)
	}
	if _, err := (Gob[string]{}).Decode(b); !errors.Is(err, ErrDeserialization) {
		t.Fatalf("int64 into string should fail, got %v", err)
	}
}

func TestJSONUseNumber(t *testing.T) {
	c := JSONCodec[any]{UseNumber: true}
	v, err := c.Decode([]byte(`9007199254740993`))
	if err != nil || v != json.Number("9007199254740993") {
		t.Fatalf("got %v (%T) err=%v", v, v, err)
	}
	if _, err := c.Decode([]byte(`1 2`)); !errors.Is(err, ErrDeserialization) {
		t.Fatalf("trailing data should fail, got %v", err)
	}
}

func TestLimitRejectsOversizedPayload(t *testing.T) {
	c := Limit[string]{Inner: JSONCodec[string]{}, Tag: JSON, MaxDecode: 4}
	b, _ := c.Encode("too long")
	if _, err := c.Decode(b); !errors.Is(err, ErrDeserialization) {
		t.Fatalf("expected ErrDeserialization, got %v", err)
	}
	if got, err := c.Decode([]byte(`"ok"`)); err != nil || got != "ok" {
		t.Fatalf("got %q err=%v", got, err)
	}
}
