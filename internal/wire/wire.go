// Package wire frames entries persisted by the file provider.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version   byte = 1
	kindEntry byte = 1
	hdrLen         = 4 + 1 + 1 + 8 + 2
)

var (
	ErrCorrupt = errors.New("unicache: corrupt entry")
	magic4     = [...]byte{'U', 'C', 'F', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry is one stored value. ExpiresAt is unix nanoseconds; 0 means no expiry.
type Entry struct {
	Key       string
	ExpiresAt int64
	Payload   []byte
}

// Expired reports whether e has a deadline at or before now.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixNano() >= e.ExpiresAt
}

// Encode layout:
//
//	magic(4) | ver(1) | kind(1) | expiresAt(i64 be) | keyLen(u16 be) | key | vlen(u32 be) | payload(vlen)
func Encode(e Entry) ([]byte, error) {
	if l := len(e.Key); l == 0 || l > 0xFFFF {
		return nil, errors.New("unicache: invalid key length")
	}
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(e.Key) + 4 + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], uint64(e.ExpiresAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(e.Key)))
	buf.Write(u2[:])
	buf.WriteString(e.Key)

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])
	buf.Write(e.Payload)
	return buf.Bytes(), nil
}

// Decode parses b. The returned payload aliases b.
func Decode(b []byte) (Entry, error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return Entry{}, ErrCorrupt
	}
	off := 6

	exp := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	klen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if klen == 0 || klen > len(b)-off {
		return Entry{}, ErrCorrupt
	}
	key := string(b[off : off+klen])
	off += klen

	if off+4 > len(b) {
		return Entry{}, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact: no trailing bytes
		return Entry{}, ErrCorrupt
	}

	return Entry{Key: key, ExpiresAt: exp, Payload: b[off : off+vlen]}, nil
}
