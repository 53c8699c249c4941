package unicache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	c "github.com/unkn0wn-root/unicache/codec"
	pr "github.com/unkn0wn-root/unicache/provider"
)

var (
	// ErrInvalidConfiguration: unknown serializer, missing provider, unknown
	// driver or malformed driver options. Construction aborts.
	ErrInvalidConfiguration = errors.New("unicache: invalid configuration")

	// ErrConnection: the provider could not reach its backend at construction.
	ErrConnection = pr.ErrConnection

	// ErrBackend: a single provider call failed.
	ErrBackend = errors.New("unicache: backend operation failed")

	// ErrDeserialization: stored bytes could not be decoded. Never reported
	// as a miss.
	ErrDeserialization = c.ErrDeserialization
)

// OpError is a failed provider call. It matches ErrBackend.
type OpError struct {
	Op  string // get, set, del, flush
	Key string // logical key; empty for flush
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("unicache: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("unicache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func (e *OpError) Is(target error) bool { return target == ErrBackend }

// BatchError collects the per-key failures of a multi-key operation. Keys
// missing from Errs succeeded.
type BatchError struct {
	Op   string
	Errs map[string]error
}

func (e *BatchError) Error() string {
	keys := make([]string, 0, len(e.Errs))
	for k := range e.Errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q: %v", k, e.Errs[k]))
	}
	return fmt.Sprintf("unicache: %s: %d key(s) failed: %s", e.Op, len(keys), strings.Join(parts, "; "))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errs))
	for _, err := range e.Errs {
		errs = append(errs, err)
	}
	return errs
}

func batchErr(op string, errs map[string]error) error {
	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Op: op, Errs: errs}
}
