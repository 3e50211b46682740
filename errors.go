package fwfdb

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, checked with errors.Is. Every error this package
// returns to a caller wraps exactly one of these, except failures to open,
// stat or mmap a file in Open, which are github.com/grailbio/base/errors
// values wrapping the OS error.
var (
	// ErrSchema reports a malformed or conflicting field specification.
	ErrSchema = errors.New("fwfdb: schema error")

	// ErrInvalidFormat reports a file lacking recognizable newlines, or too
	// small to contain one record.
	ErrInvalidFormat = errors.New("fwfdb: invalid format")

	// ErrOutOfBounds reports a logical index or slice endpoint outside the
	// view's valid range.
	ErrOutOfBounds = errors.New("fwfdb: out of bounds")

	// ErrInvalidState reports access after Close, or an operation against an
	// unopened File, or mutation of a finalized packed posting store.
	ErrInvalidState = errors.New("fwfdb: invalid state")

	// ErrParseFailed reports a numeric key parse failure during a kernel
	// scan.
	ErrParseFailed = errors.New("fwfdb: parse failed")

	// ErrCapacity reports a packed posting store append beyond its
	// configured maxsize.
	ErrCapacity = errors.New("fwfdb: capacity exceeded")
)

func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
