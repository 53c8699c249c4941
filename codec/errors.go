package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrDeserialization matches every decode failure produced by this package.
var ErrDeserialization = errors.New("codec: deserialization failed")

// DecodeError wraps the underlying decoder failure together with the tag that
// produced it.
type DecodeError struct {
	Tag Tag
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec %s: decode: %v", e.Tag, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDeserialization }

func decodeErr(t Tag, err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Tag: t, Err: err}
}
